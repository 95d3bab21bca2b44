package dataroom

import (
	"context"
	"fmt"
	"log/slog"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
)

type fileService struct {
	nodeRepo dataroomRepo.NodeRepository
	blobs    repositories.BlobStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewFileService creates the owner-side file download service
func NewFileService(
	nodeRepo dataroomRepo.NodeRepository,
	blobs repositories.BlobStore,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) dataroomSvc.FileService {
	return &fileService{
		nodeRepo: nodeRepo,
		blobs:    blobs,
		metrics:  metrics,
		logger:   logger,
	}
}

// OpenFile opens a file owned by userID
func (s *fileService) OpenFile(ctx context.Context, userID, fileID string) (*dataroomSvc.FileContent, error) {
	node, err := s.nodeRepo.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	return openBlob(ctx, s.blobs, node, s.metrics, s.logger)
}

// openBlob opens the blob behind a file node. Folders are not found.
func openBlob(ctx context.Context, blobs repositories.BlobStore, node *models.Node, m *metrics.Metrics, logger *slog.Logger) (*dataroomSvc.FileContent, error) {
	if !node.IsFile() {
		return nil, fmt.Errorf("file %s: %w", node.ID, domain.ErrNotFound)
	}

	r, err := blobs.Open(ctx, node.FilePath)
	if err != nil {
		m.BlobFailure("read")
		logger.Error("open blob failed", "node_id", node.ID, "handle", node.FilePath, "error", err)
		return nil, fmt.Errorf("read file %s: %w", node.ID, domain.ErrStorageFailure)
	}
	return &dataroomSvc.FileContent{Node: node, Reader: r}, nil
}
