package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// DataroomRepository defines data access operations for data rooms
type DataroomRepository interface {
	// Create creates a new data room
	Create(ctx context.Context, room *dataroom.Dataroom) error

	// GetByID retrieves a data room owned by userID
	GetByID(ctx context.Context, id, userID string) (*dataroom.Dataroom, error)

	// GetByIDOnly retrieves a data room without an ownership check
	GetByIDOnly(ctx context.Context, id string) (*dataroom.Dataroom, error)

	// ListByUser lists a user's data rooms, oldest first
	ListByUser(ctx context.Context, userID string) ([]dataroom.Dataroom, error)

	// GetByShareToken resolves the legacy whole-room share token
	GetByShareToken(ctx context.Context, token string) (*dataroom.Dataroom, error)

	// Delete deletes a data room with its nodes and share links
	Delete(ctx context.Context, id, userID string) error
}
