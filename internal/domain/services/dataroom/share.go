package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// ShareService manages share links and resolves what a link can see
type ShareService interface {
	CreateShareLink(ctx context.Context, req *CreateShareLinkRequest) (*ShareLinkResult, error)
	ListShareLinks(ctx context.Context, userID, dataroomID string) ([]dataroom.ShareLink, error)
	RevokeShareLink(ctx context.Context, userID, token string) error

	// GetShared returns the nodes visible through token, navigated to path
	// relative to the link's anchor
	GetShared(ctx context.Context, token, path string) (*dataroom.SharedView, error)

	// OpenSharedFile opens a file if it lies inside the link's scope
	OpenSharedFile(ctx context.Context, token, fileID string) (*FileContent, error)
}

// CreateShareLinkRequest represents a share link creation request
type CreateShareLinkRequest struct {
	UserID     string  `json:"-"`
	DataroomID string  `json:"dataroom_id"`
	FolderID   *string `json:"folder_id,omitempty"` // null shares the whole room
}

// ShareLinkResult is returned after creating a share link
type ShareLinkResult struct {
	Token          string  `json:"token"`
	ShareURL       string  `json:"share_url"`
	SharedFolderID *string `json:"shared_folder_id"`
}
