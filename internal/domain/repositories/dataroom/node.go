package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// NodeRepository defines data access operations for folders and files.
// Owner-scoped methods resolve ownership through the node's data room.
type NodeRepository interface {
	// Create inserts a node. A sibling with the same name (case-insensitive)
	// yields *domain.ConflictError.
	Create(ctx context.Context, node *dataroom.Node) error

	// GetByID retrieves a node owned by userID
	GetByID(ctx context.Context, id, userID string) (*dataroom.Node, error)

	// GetByIDOnly retrieves a node without an ownership check (share access)
	GetByIDOnly(ctx context.Context, id string) (*dataroom.Node, error)

	// UpdateName sets name and updated_at
	UpdateName(ctx context.Context, node *dataroom.Node) error

	// UpdateParent moves a node under node.ParentID and sets updated_at
	UpdateParent(ctx context.Context, node *dataroom.Node) error

	// FindByParentAndName finds a sibling by trimmed, case-insensitive name.
	// Returns domain.ErrNotFound when no sibling matches.
	FindByParentAndName(ctx context.Context, dataroomID string, parentID *string, name string) (*dataroom.Node, error)

	// ListChildren lists immediate children of parentID (nil = top level)
	ListChildren(ctx context.Context, dataroomID string, parentID *string) ([]dataroom.Node, error)

	// ListByDataroom returns every node in a data room (flat)
	ListByDataroom(ctx context.Context, dataroomID string) ([]dataroom.Node, error)

	// ListDescendants returns the node and its full transitive subtree
	ListDescendants(ctx context.Context, nodeID, dataroomID string) ([]dataroom.Node, error)

	// ListByIDs returns the nodes among ids owned by userID
	ListByIDs(ctx context.Context, ids []string, userID string) ([]dataroom.Node, error)

	// DeleteCascade deletes the given nodes; descendants go with them
	DeleteCascade(ctx context.Context, ids []string) (int, error)
}
