package dataroom

import (
	"context"
	"io"

	"dataroom/internal/domain/models/dataroom"
)

// NodeService handles folder and file mutations
type NodeService interface {
	// CreateFolder creates a folder under req.ParentID (nil = top level)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*dataroom.Node, error)

	// UploadFiles stores each file independently and partitions the batch
	// into uploaded files and conflicts. Per-file failures never abort the batch.
	UploadFiles(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// UpdateNode renames and/or moves a node
	UpdateNode(ctx context.Context, id string, req *UpdateNodeRequest) (*dataroom.Node, error)

	// DeleteNode deletes a node, its subtree and their blobs
	DeleteNode(ctx context.Context, userID, id string) error

	// BulkDelete deletes all ids or none of them. Returns the number of selected nodes deleted.
	BulkDelete(ctx context.Context, userID string, ids []string) (int, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID     string  `json:"-"`
	DataroomID string  `json:"dataroom_id"`
	Name       string  `json:"name"`
	ParentID   *string `json:"parent_id,omitempty"` // null for top level
}

// UpdateNodeRequest is transport-agnostic. Move=false leaves the parent alone;
// Move=true with ParentID=nil moves the node to the top level.
type UpdateNodeRequest struct {
	UserID   string
	Name     *string
	Move     bool
	ParentID *string
}

// UploadFile is one file of an upload batch. Open is only called for files
// that pass validation.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadRequest represents a batch upload into one folder
type UploadRequest struct {
	UserID     string
	DataroomID string
	ParentID   *string
	Files      []UploadFile
}

// UploadConflict describes a file that was not stored
type UploadConflict struct {
	Name          string `json:"name"`
	Reason        string `json:"reason"`
	ExistingID    string `json:"existing,omitempty"`
	SuggestedName string `json:"suggested_name,omitempty"`
}

// UploadResult partitions an upload batch
type UploadResult struct {
	Uploaded  []dataroom.Node  `json:"uploaded"`
	Conflicts []UploadConflict `json:"conflicts"`
}

// FileContent is an opened file blob. Caller must close Reader.
type FileContent struct {
	Node   *dataroom.Node
	Reader io.ReadCloser
}

// FileService serves file content to owners
type FileService interface {
	OpenFile(ctx context.Context, userID, fileID string) (*FileContent, error)
}
