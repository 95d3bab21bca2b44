package dataroom

import "time"

// RootID is the id of the virtual root that parents every top-level node.
// It is never persisted.
const RootID = "root"

// TreeNode represents the root of the nested data room tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
	Files   []FileTreeNode    `json:"files"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Folders   []*FolderTreeNode `json:"folders"`
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only)
type FileTreeNode struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	MimeType  string    `json:"mime_type,omitempty"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Breadcrumb is one step on the path from a local root to a folder
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// RootLabel names the owner's virtual root, e.g. "Data Room (ann@example.com)"
func RootLabel(email string) string {
	if email == "" {
		return DefaultDataroomName
	}
	return DefaultDataroomName + " (" + email + ")"
}
