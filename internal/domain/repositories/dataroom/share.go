package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// ShareLinkRepository defines data access operations for share links
type ShareLinkRepository interface {
	Create(ctx context.Context, link *dataroom.ShareLink) error
	GetByToken(ctx context.Context, token string) (*dataroom.ShareLink, error)
	ListByDataroom(ctx context.Context, dataroomID string) ([]dataroom.ShareLink, error)
	Delete(ctx context.Context, token, dataroomID string) error
}
