package tree

import (
	models "dataroom/internal/domain/models/dataroom"
)

// Build nests the snapshot into folders and files.
//
// Three passes: create a tree node per folder, attach folders to their
// parents, then attach files. Children keep the snapshot's display order.
// Nodes whose parent is missing from the snapshot are dropped.
func (s *Snapshot) Build() *models.TreeNode {
	ordered := s.Nodes()

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode)
	for _, n := range ordered {
		if !n.IsFolder() {
			continue
		}
		folderMap[n.ID] = &models.FolderTreeNode{
			ID:        n.ID,
			Name:      n.Name,
			ParentID:  n.ParentID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	root := &models.TreeNode{
		Folders: []*models.FolderTreeNode{},
		Files:   []models.FileTreeNode{},
	}

	// Second pass: nest folders
	for _, n := range ordered {
		if !n.IsFolder() {
			continue
		}
		node := folderMap[n.ID]
		if n.ParentID == nil {
			root.Folders = append(root.Folders, node)
		} else if parent, exists := folderMap[*n.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: files
	for _, n := range ordered {
		if !n.IsFile() {
			continue
		}
		file := models.FileTreeNode{
			ID:        n.ID,
			Name:      n.Name,
			ParentID:  n.ParentID,
			MimeType:  n.MimeType,
			Size:      n.Size,
			UpdatedAt: n.UpdatedAt,
		}
		if n.ParentID == nil {
			root.Files = append(root.Files, file)
		} else if parent, exists := folderMap[*n.ParentID]; exists {
			parent.Files = append(parent.Files, file)
		}
	}

	return root
}
