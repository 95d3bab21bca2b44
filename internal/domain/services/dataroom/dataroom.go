package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// DataroomService handles data room lifecycle and owner views
type DataroomService interface {
	// GetOrCreateDefault returns the caller's first data room, creating it on first visit
	GetOrCreateDefault(ctx context.Context, userID, email string) (*dataroom.DataroomWithNodes, error)

	ListDatarooms(ctx context.Context, userID string) ([]dataroom.Dataroom, error)
	CreateDataroom(ctx context.Context, req *CreateDataroomRequest) (*dataroom.Dataroom, error)
	GetDataroom(ctx context.Context, userID, id string) (*dataroom.DataroomWithNodes, error)
	DeleteDataroom(ctx context.Context, userID, id string) error

	// GetTree returns the nested folder/file tree of a data room
	GetTree(ctx context.Context, userID, id string) (*dataroom.TreeNode, error)

	// ResolvePath resolves a slash separated folder path from the top level
	ResolvePath(ctx context.Context, userID, id, path string) (*FolderView, error)
}

// CreateDataroomRequest represents a data room creation request
type CreateDataroomRequest struct {
	UserID     string `json:"-"`
	OwnerEmail string `json:"-"`
	Name       string `json:"name"`
}

// FolderView is the owner's view of one folder: the folder (nil at the
// top level), its breadcrumbs from the virtual root and its children.
type FolderView struct {
	Folder      *dataroom.Node        `json:"folder"`
	Breadcrumbs []dataroom.Breadcrumb `json:"breadcrumbs"`
	Children    []dataroom.Node       `json:"children"`
}
