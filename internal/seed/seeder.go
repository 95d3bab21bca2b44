// Package seed loads sample data rooms through the service layer.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
)

// Seeder creates fixture content for one user. Re-running a fixture reuses
// rooms and folders that already exist and skips files that already exist.
type Seeder struct {
	rooms  dataroomSvc.DataroomService
	nodes  dataroomSvc.NodeService
	shares dataroomSvc.ShareService
	logger *slog.Logger
}

// NewSeeder creates a seeder
func NewSeeder(
	rooms dataroomSvc.DataroomService,
	nodes dataroomSvc.NodeService,
	shares dataroomSvc.ShareService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{rooms: rooms, nodes: nodes, shares: shares, logger: logger}
}

// Report summarizes a seeding run
type Report struct {
	Datarooms    int
	Folders      int
	Files        int
	SkippedFiles int
	ShareURLs    []string
}

// Apply creates every room of fx for userID
func (s *Seeder) Apply(ctx context.Context, fx *Fixture, userID, email string) (*Report, error) {
	existing, err := s.rooms.ListDatarooms(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list datarooms: %w", err)
	}
	byName := make(map[string]models.Dataroom, len(existing))
	for _, room := range existing {
		byName[room.Name] = room
	}

	report := &Report{}
	for _, rf := range fx.Datarooms {
		room, ok := byName[rf.Name]
		if !ok {
			created, err := s.rooms.CreateDataroom(ctx, &dataroomSvc.CreateDataroomRequest{
				UserID:     userID,
				OwnerEmail: email,
				Name:       rf.Name,
			})
			if err != nil {
				return report, fmt.Errorf("create dataroom %q: %w", rf.Name, err)
			}
			room = *created
			report.Datarooms++
			s.logger.Info("dataroom created", "id", room.ID, "name", room.Name)
		}

		folders := map[string]string{} // path -> folder id
		if err := s.createEntries(ctx, userID, room.ID, nil, "", rf.Nodes, folders, report); err != nil {
			return report, err
		}

		for _, path := range rf.Shares {
			path = strings.Trim(path, "/")
			req := &dataroomSvc.CreateShareLinkRequest{UserID: userID, DataroomID: room.ID}
			if path != "" {
				id, ok := folders[path]
				if !ok {
					return report, fmt.Errorf("dataroom %q: share path %q is not a folder", rf.Name, path)
				}
				req.FolderID = &id
			}
			link, err := s.shares.CreateShareLink(ctx, req)
			if err != nil {
				return report, fmt.Errorf("share %q in %q: %w", path, rf.Name, err)
			}
			report.ShareURLs = append(report.ShareURLs, link.ShareURL)
		}
	}
	return report, nil
}

func (s *Seeder) createEntries(
	ctx context.Context,
	userID, dataroomID string,
	parentID *string,
	prefix string,
	entries []Entry,
	folders map[string]string,
	report *Report,
) error {
	var files []dataroomSvc.UploadFile
	for _, e := range entries {
		if e.File == "" {
			continue
		}
		content := e.Content
		files = append(files, dataroomSvc.UploadFile{
			Name:     e.File,
			MimeType: e.MimeType,
			Size:     int64(len(content)),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(content)), nil
			},
		})
	}
	if len(files) > 0 {
		result, err := s.nodes.UploadFiles(ctx, &dataroomSvc.UploadRequest{
			UserID:     userID,
			DataroomID: dataroomID,
			ParentID:   parentID,
			Files:      files,
		})
		if err != nil {
			return fmt.Errorf("upload into %q: %w", "/"+prefix, err)
		}
		report.Files += len(result.Uploaded)
		for _, c := range result.Conflicts {
			if c.ExistingID == "" {
				return fmt.Errorf("upload %q: %s", prefix+"/"+c.Name, c.Reason)
			}
			report.SkippedFiles++
			s.logger.Debug("file exists, skipped", "name", c.Name)
		}
	}

	for _, e := range entries {
		if e.Folder == "" {
			continue
		}
		path := e.Folder
		if prefix != "" {
			path = prefix + "/" + e.Folder
		}

		folderID, err := s.ensureFolder(ctx, userID, dataroomID, parentID, e.Folder)
		if err != nil {
			return fmt.Errorf("folder %q: %w", path, err)
		}
		folders[path] = folderID
		report.Folders++
		if err := s.createEntries(ctx, userID, dataroomID, &folderID, path, e.Children, folders, report); err != nil {
			return err
		}
	}
	return nil
}

// ensureFolder creates a folder or returns the id of the existing one
func (s *Seeder) ensureFolder(ctx context.Context, userID, dataroomID string, parentID *string, name string) (string, error) {
	folder, err := s.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
		UserID:     userID,
		DataroomID: dataroomID,
		ParentID:   parentID,
		Name:       name,
	})
	if err == nil {
		return folder.ID, nil
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) && conflict.ResourceType == "folder" {
		return conflict.ResourceID, nil
	}
	return "", err
}
