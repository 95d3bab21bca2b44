package dataroom

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"
)

const dataroomColumns = `id, user_id, name, owner_email, share_token, created_at, updated_at`

// PostgresDataroomRepository implements the DataroomRepository interface
type PostgresDataroomRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewDataroomRepository creates a new data room repository
func NewDataroomRepository(config *postgres.RepositoryConfig) dataroomRepo.DataroomRepository {
	return &PostgresDataroomRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new data room
func (r *PostgresDataroomRepository) Create(ctx context.Context, room *models.Dataroom) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, owner_email, share_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.Datarooms)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		room.UserID,
		room.Name,
		room.OwnerEmail,
		room.ShareToken,
		room.CreatedAt,
		room.UpdatedAt,
	).Scan(&room.ID)
	if err != nil {
		return fmt.Errorf("create dataroom: %w", err)
	}
	return nil
}

// GetByID retrieves a data room owned by userID
func (r *PostgresDataroomRepository) GetByID(ctx context.Context, id, userID string) (*models.Dataroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, dataroomColumns, r.tables.Datarooms)
	return r.getOne(ctx, id, query, id, userID)
}

// GetByIDOnly retrieves a data room without an ownership check
func (r *PostgresDataroomRepository) GetByIDOnly(ctx context.Context, id string) (*models.Dataroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, dataroomColumns, r.tables.Datarooms)
	return r.getOne(ctx, id, query, id)
}

// GetByShareToken resolves the legacy whole-room share token
func (r *PostgresDataroomRepository) GetByShareToken(ctx context.Context, token string) (*models.Dataroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE share_token = $1`, dataroomColumns, r.tables.Datarooms)
	return r.getOne(ctx, "with share token", query, token)
}

// ListByUser lists a user's data rooms, oldest first
func (r *PostgresDataroomRepository) ListByUser(ctx context.Context, userID string) ([]models.Dataroom, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, dataroomColumns, r.tables.Datarooms)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list datarooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Dataroom{}
	for rows.Next() {
		room, err := scanDataroom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dataroom: %w", err)
		}
		rooms = append(rooms, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datarooms: %w", err)
	}

	return rooms, nil
}

// Delete deletes a data room. Nodes and share links cascade.
func (r *PostgresDataroomRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Datarooms)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete dataroom: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("dataroom %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresDataroomRepository) getOne(ctx context.Context, label, query string, args ...any) (*models.Dataroom, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	room, err := scanDataroom(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("dataroom %s: %w", label, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get dataroom: %w", err)
	}
	return room, nil
}

func scanDataroom(row pgx.Row) (*models.Dataroom, error) {
	var room models.Dataroom
	err := row.Scan(
		&room.ID,
		&room.UserID,
		&room.Name,
		&room.OwnerEmail,
		&room.ShareToken,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}
