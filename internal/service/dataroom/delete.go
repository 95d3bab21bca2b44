package dataroom

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/metrics"
)

// DeleteNode deletes a node with its whole subtree. The subtree is listed
// only to find blobs to purge; the metadata delete cascades in the store.
func (s *nodeService) DeleteNode(ctx context.Context, userID, id string) error {
	ctx = context.WithoutCancel(ctx)

	node, err := s.nodeRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	closure, err := s.nodeRepo.ListDescendants(ctx, node.ID, node.DataroomID)
	if err != nil {
		return fmt.Errorf("list descendants: %w", err)
	}

	purgeBlobs(ctx, s.blobs, closure, s.metrics, s.logger)

	if _, err := s.nodeRepo.DeleteCascade(ctx, []string{node.ID}); err != nil {
		return err
	}

	s.metrics.NodesDeleted(len(closure))
	s.logger.Info("node deleted",
		"id", node.ID,
		"name", node.Name,
		"dataroom_id", node.DataroomID,
		"subtree_size", len(closure),
	)

	return nil
}

// BulkDelete deletes every id or none. Duplicate ids count once.
// Returns the number of selected nodes deleted.
func (s *nodeService) BulkDelete(ctx context.Context, userID string, ids []string) (int, error) {
	ids, err := validateIDs(ids)
	if err != nil {
		return 0, err
	}
	ctx = context.WithoutCancel(ctx)

	nodes, err := s.nodeRepo.ListByIDs(ctx, ids, userID)
	if err != nil {
		return 0, fmt.Errorf("load nodes: %w", err)
	}
	if len(nodes) != len(ids) {
		s.logger.Warn("bulk delete rejected",
			"requested", len(ids),
			"resolved", len(nodes),
		)
		return 0, domain.ErrPartialAccessDenied
	}

	// Selections may nest (a folder and a file inside it), so union by id
	seen := make(map[string]bool)
	var closure []models.Node
	for _, n := range nodes {
		subtree, err := s.nodeRepo.ListDescendants(ctx, n.ID, n.DataroomID)
		if err != nil {
			return 0, fmt.Errorf("list descendants: %w", err)
		}
		for _, d := range subtree {
			if !seen[d.ID] {
				seen[d.ID] = true
				closure = append(closure, d)
			}
		}
	}

	purgeBlobs(ctx, s.blobs, closure, s.metrics, s.logger)

	if _, err := s.nodeRepo.DeleteCascade(ctx, ids); err != nil {
		return 0, err
	}

	s.metrics.NodesDeleted(len(closure))
	s.logger.Info("nodes bulk deleted",
		"selected", len(nodes),
		"subtree_size", len(closure),
	)

	return len(nodes), nil
}

// purgeBlobs deletes the blobs of every file in nodes, a few at a time.
// Failures are logged and counted but never returned: metadata deletion
// proceeds regardless.
func purgeBlobs(ctx context.Context, blobs repositories.BlobStore, nodes []models.Node, m *metrics.Metrics, logger *slog.Logger) {
	var g errgroup.Group
	g.SetLimit(config.BlobPurgeConcurrency)

	var failed atomic.Int32
	for _, n := range nodes {
		if !n.IsFile() || n.FilePath == "" {
			continue
		}
		g.Go(func() error {
			if err := blobs.Delete(ctx, n.FilePath); err != nil {
				failed.Add(1)
				m.BlobFailure("delete")
				logger.Warn("blob delete failed",
					"node_id", n.ID,
					"handle", n.FilePath,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		logger.Warn("some blobs were not deleted", "failed", n)
	}
}
