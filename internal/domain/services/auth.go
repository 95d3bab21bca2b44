package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Ownership based: a user can access data rooms they own and everything inside them.
type ResourceAuthorizer interface {
	// CanAccessDataroom checks if user owns the data room
	CanAccessDataroom(ctx context.Context, userID, dataroomID string) error

	// CanAccessNode checks if user can access a node (via its data room)
	CanAccessNode(ctx context.Context, userID, nodeID string) error
}
