package auth

import (
	"context"
	"errors"
	"fmt"

	"dataroom/internal/domain"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a resource if they own the data room that contains it.
// Share links never go through here; they are resolved by the share service.
type OwnerBasedAuthorizer struct {
	dataroomRepo dataroomRepo.DataroomRepository
	nodeRepo     dataroomRepo.NodeRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	dataroomRepo dataroomRepo.DataroomRepository,
	nodeRepo dataroomRepo.NodeRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		dataroomRepo: dataroomRepo,
		nodeRepo:     nodeRepo,
	}
}

// CanAccessDataroom checks if user owns the data room
func (a *OwnerBasedAuthorizer) CanAccessDataroom(ctx context.Context, userID, dataroomID string) error {
	// GetByID already filters by userID
	_, err := a.dataroomRepo.GetByID(ctx, dataroomID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to dataroom %s: %w", dataroomID, domain.ErrForbidden)
		}
		return fmt.Errorf("check dataroom access: %w", err)
	}
	return nil
}

// CanAccessNode checks if user can access a node (via its data room)
func (a *OwnerBasedAuthorizer) CanAccessNode(ctx context.Context, userID, nodeID string) error {
	node, err := a.nodeRepo.GetByIDOnly(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("get node for auth: %w", err)
	}
	return a.CanAccessDataroom(ctx, userID, node.DataroomID)
}
