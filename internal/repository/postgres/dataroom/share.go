package dataroom

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"
)

// PostgresShareLinkRepository implements the ShareLinkRepository interface
type PostgresShareLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewShareLinkRepository creates a new share link repository
func NewShareLinkRepository(config *postgres.RepositoryConfig) dataroomRepo.ShareLinkRepository {
	return &PostgresShareLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a share link
func (r *PostgresShareLinkRepository) Create(ctx context.Context, link *models.ShareLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (token, dataroom_id, shared_folder_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.ShareLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, link.Token, link.DataroomID, link.SharedFolderID, link.CreatedAt); err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("share token: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

// GetByToken retrieves a share link by token
func (r *PostgresShareLinkRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT token, dataroom_id, shared_folder_id, created_at
		FROM %s
		WHERE token = $1
	`, r.tables.ShareLinks)

	var link models.ShareLink
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, token).Scan(
		&link.Token,
		&link.DataroomID,
		&link.SharedFolderID,
		&link.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.ErrShareNotFound
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}
	return &link, nil
}

// ListByDataroom lists a data room's share links, newest first
func (r *PostgresShareLinkRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]models.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT token, dataroom_id, shared_folder_id, created_at
		FROM %s
		WHERE dataroom_id = $1
		ORDER BY created_at DESC
	`, r.tables.ShareLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, dataroomID)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	defer rows.Close()

	links := []models.ShareLink{}
	for rows.Next() {
		var link models.ShareLink
		if err := rows.Scan(&link.Token, &link.DataroomID, &link.SharedFolderID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share links: %w", err)
	}

	return links, nil
}

// Delete revokes a share link
func (r *PostgresShareLinkRepository) Delete(ctx context.Context, token, dataroomID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token = $1 AND dataroom_id = $2`, r.tables.ShareLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, token, dataroomID)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrShareNotFound
	}
	return nil
}
