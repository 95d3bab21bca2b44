package dataroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
	"dataroom/internal/tree"
)

type dataroomService struct {
	dataroomRepo dataroomRepo.DataroomRepository
	nodeRepo     dataroomRepo.NodeRepository
	blobs        repositories.BlobStore
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewDataroomService creates the data room service
func NewDataroomService(
	dataroomRepo dataroomRepo.DataroomRepository,
	nodeRepo dataroomRepo.NodeRepository,
	blobs repositories.BlobStore,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) dataroomSvc.DataroomService {
	return &dataroomService{
		dataroomRepo: dataroomRepo,
		nodeRepo:     nodeRepo,
		blobs:        blobs,
		metrics:      metrics,
		logger:       logger,
	}
}

// GetOrCreateDefault returns the caller's oldest data room, creating
// "Data Room" on first visit
func (s *dataroomService) GetOrCreateDefault(ctx context.Context, userID, email string) (*models.DataroomWithNodes, error) {
	rooms, err := s.dataroomRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rooms) > 0 {
		return s.withNodes(ctx, &rooms[0])
	}

	room, err := s.CreateDataroom(ctx, &dataroomSvc.CreateDataroomRequest{
		UserID:     userID,
		OwnerEmail: email,
		Name:       models.DefaultDataroomName,
	})
	if err != nil {
		return nil, err
	}
	return &models.DataroomWithNodes{Dataroom: *room, Nodes: []models.Node{}}, nil
}

func (s *dataroomService) ListDatarooms(ctx context.Context, userID string) ([]models.Dataroom, error) {
	return s.dataroomRepo.ListByUser(ctx, userID)
}

func (s *dataroomService) CreateDataroom(ctx context.Context, req *dataroomSvc.CreateDataroomRequest) (*models.Dataroom, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxDataroomNameLength)),
	); err != nil {
		return nil, validationError(err)
	}

	now := time.Now().UTC()
	room := &models.Dataroom{
		UserID:     req.UserID,
		Name:       req.Name,
		OwnerEmail: req.OwnerEmail,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.dataroomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("dataroom created", "id", room.ID, "user_id", room.UserID, "name", room.Name)
	return room, nil
}

// GetDataroom returns the room with its flat node list in display order
func (s *dataroomService) GetDataroom(ctx context.Context, userID, id string) (*models.DataroomWithNodes, error) {
	room, err := s.dataroomRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.withNodes(ctx, room)
}

func (s *dataroomService) withNodes(ctx context.Context, room *models.Dataroom) (*models.DataroomWithNodes, error) {
	nodes, err := s.nodeRepo.ListByDataroom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	tree.Sort(nodes)
	return &models.DataroomWithNodes{Dataroom: *room, Nodes: nodes}, nil
}

// DeleteDataroom deletes the room, its nodes and share links, and purges blobs
func (s *dataroomService) DeleteDataroom(ctx context.Context, userID, id string) error {
	ctx = context.WithoutCancel(ctx)

	room, err := s.dataroomRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	nodes, err := s.nodeRepo.ListByDataroom(ctx, room.ID)
	if err != nil {
		return err
	}

	purgeBlobs(ctx, s.blobs, nodes, s.metrics, s.logger)

	if err := s.dataroomRepo.Delete(ctx, room.ID, userID); err != nil {
		return err
	}

	s.metrics.NodesDeleted(len(nodes))
	s.logger.Info("dataroom deleted", "id", room.ID, "nodes", len(nodes))
	return nil
}

// GetTree returns the nested folder/file tree
func (s *dataroomService) GetTree(ctx context.Context, userID, id string) (*models.TreeNode, error) {
	snapshot, _, err := s.snapshot(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return snapshot.Build(), nil
}

// ResolvePath resolves a folder path like "Finance/Q1" from the top level.
// An empty path is the virtual root.
func (s *dataroomService) ResolvePath(ctx context.Context, userID, id, path string) (*dataroomSvc.FolderView, error) {
	segments := tree.SplitPath(path)
	if len(segments) > config.MaxPathDepth {
		return nil, fmt.Errorf("%w: path is deeper than %d folders", domain.ErrValidation, config.MaxPathDepth)
	}

	snapshot, room, err := s.snapshot(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	folder, ok := snapshot.ResolvePath(segments, "")
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", path, domain.ErrNotFound)
	}

	currentID := ""
	if folder != nil {
		currentID = folder.ID
	}

	return &dataroomSvc.FolderView{
		Folder:      folder,
		Breadcrumbs: snapshot.Breadcrumbs(currentID, "", models.RootLabel(room.OwnerEmail)),
		Children:    snapshot.ChildrenOf(currentID),
	}, nil
}

func (s *dataroomService) snapshot(ctx context.Context, userID, id string) (*tree.Snapshot, *models.Dataroom, error) {
	room, err := s.dataroomRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := s.nodeRepo.ListByDataroom(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	return tree.NewSnapshot(nodes), room, nil
}
