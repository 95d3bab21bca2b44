package dataroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
	"dataroom/internal/tree"
)

type nodeService struct {
	nodeRepo   dataroomRepo.NodeRepository
	blobs      repositories.BlobStore
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewNodeService creates the folder/file mutation service
func NewNodeService(
	nodeRepo dataroomRepo.NodeRepository,
	blobs repositories.BlobStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) dataroomSvc.NodeService {
	return &nodeService{
		nodeRepo:   nodeRepo,
		blobs:      blobs,
		txManager:  txManager,
		authorizer: authorizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateFolder creates a folder after checking ownership, the parent and
// sibling names. The store's unique index catches races that slip past
// the sibling check.
func (s *nodeService) CreateFolder(ctx context.Context, req *dataroomSvc.CreateFolderRequest) (*models.Node, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.DataroomID, validation.Required),
	); err != nil {
		return nil, validationError(err)
	}
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalizeParentID(req.ParentID)

	if err := s.authorizer.CanAccessDataroom(ctx, req.UserID, req.DataroomID); err != nil {
		return nil, err
	}
	if err := s.requireFolder(ctx, req.UserID, req.DataroomID, parentID); err != nil {
		return nil, err
	}

	if err := s.checkSiblingName(ctx, req.DataroomID, parentID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &models.Node{
		DataroomID: req.DataroomID,
		ParentID:   parentID,
		Name:       name,
		Type:       models.NodeTypeFolder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.nodeRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.metrics.NodeCreated(string(models.NodeTypeFolder))
	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"dataroom_id", folder.DataroomID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// UpdateNode renames and/or moves a node.
// Renaming a node to its current name is allowed: the sibling check skips the node itself.
func (s *nodeService) UpdateNode(ctx context.Context, id string, req *dataroomSvc.UpdateNodeRequest) (*models.Node, error) {
	if req.Name == nil && !req.Move {
		return nil, fmt.Errorf("%w: at least one of name or parent_id is required", domain.ErrValidation)
	}

	var newName string
	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		newName = name
	}

	var updated *models.Node
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		node, err := s.nodeRepo.GetByID(ctx, id, req.UserID)
		if err != nil {
			return err
		}
		if newName == "" {
			newName = node.Name
		}

		target := node.ParentID
		if req.Move {
			target = normalizeParentID(req.ParentID)
			if err := s.validateMove(ctx, req.UserID, node, target); err != nil {
				return err
			}
		}

		if err := s.checkSiblingName(ctx, node.DataroomID, target, newName, node.ID); err != nil {
			return err
		}

		node.Name = newName
		node.ParentID = target
		node.UpdatedAt = time.Now().UTC()

		if req.Move {
			err = s.nodeRepo.UpdateParent(ctx, node)
		} else {
			err = s.nodeRepo.UpdateName(ctx, node)
		}
		if err != nil {
			return err
		}
		updated = node
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node updated",
		"id", updated.ID,
		"name", updated.Name,
		"parent_id", updated.ParentID,
		"moved", req.Move,
	)

	return updated, nil
}

// validateMove checks the destination exists in the same data room, is a
// folder, and is not the node itself or one of its descendants
func (s *nodeService) validateMove(ctx context.Context, userID string, node *models.Node, target *string) error {
	if target == nil {
		return nil
	}

	parent, err := s.nodeRepo.GetByID(ctx, *target, userID)
	if err != nil {
		return fmt.Errorf("destination folder: %w", err)
	}
	if parent.DataroomID != node.DataroomID {
		return fmt.Errorf("%w: cannot move a node to another data room", domain.ErrValidation)
	}
	if !parent.IsFolder() {
		return fmt.Errorf("%w: destination is not a folder", domain.ErrValidation)
	}

	nodes, err := s.nodeRepo.ListByDataroom(ctx, node.DataroomID)
	if err != nil {
		return fmt.Errorf("load data room for move: %w", err)
	}
	if tree.NewSnapshot(nodes).IsAncestor(node.ID, *target) {
		return fmt.Errorf("%w: cannot move a folder into itself or one of its descendants", domain.ErrValidation)
	}
	return nil
}

// requireFolder checks parentID (nil = top level) is a folder in the data room
func (s *nodeService) requireFolder(ctx context.Context, userID, dataroomID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	parent, err := s.nodeRepo.GetByID(ctx, *parentID, userID)
	if err != nil {
		return fmt.Errorf("parent folder: %w", err)
	}
	if parent.DataroomID != dataroomID || !parent.IsFolder() {
		return fmt.Errorf("parent folder %s: %w", *parentID, domain.ErrNotFound)
	}
	return nil
}

// checkSiblingName returns a ConflictError when another node (not exceptID)
// under parentID already uses name, ignoring case
func (s *nodeService) checkSiblingName(ctx context.Context, dataroomID string, parentID *string, name, exceptID string) error {
	existing, err := s.nodeRepo.FindByParentAndName(ctx, dataroomID, parentID, name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("check sibling names: %w", err)
	}
	if existing.ID == exceptID {
		return nil
	}
	return domain.NewNameConflict(name, strings.ToLower(string(existing.Type)), existing.ID)
}

// asConflict extracts a name conflict raised by the store
func asConflict(err error) (*domain.ConflictError, bool) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
