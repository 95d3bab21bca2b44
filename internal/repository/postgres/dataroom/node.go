package dataroom

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"
)

const nodeColumns = `n.id, n.dataroom_id, n.parent_id, n.name, n.type,
	COALESCE(n.file_path, ''), COALESCE(n.mime_type, ''), COALESCE(n.size, 0),
	n.created_at, n.updated_at`

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) dataroomRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder or file node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (dataroom_id, parent_id, name, type, file_path, mime_type, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)
		RETURNING id
	`, r.tables.Nodes)

	var size any
	if node.IsFile() {
		size = node.Size
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		node.DataroomID,
		node.ParentID,
		node.Name,
		string(node.Type),
		node.FilePath,
		node.MimeType,
		size,
		node.CreatedAt,
		node.UpdatedAt,
	).Scan(&node.ID)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflictFor(ctx, node)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create node: %w", err)
	}

	return nil
}

// GetByID retrieves a node owned by userID
func (r *PostgresNodeRepository) GetByID(ctx context.Context, id, userID string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		JOIN %s d ON d.id = n.dataroom_id
		WHERE n.id = $1 AND d.user_id = $2
	`, nodeColumns, r.tables.Nodes, r.tables.Datarooms)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// GetByIDOnly retrieves a node by ID without an ownership check
func (r *PostgresNodeRepository) GetByIDOnly(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s n WHERE n.id = $1`, nodeColumns, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// UpdateName renames a node and bumps updated_at
func (r *PostgresNodeRepository) UpdateName(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND dataroom_id = $4
	`, r.tables.Nodes)

	return r.update(ctx, node, query, node.Name, node.UpdatedAt, node.ID, node.DataroomID)
}

// UpdateParent moves a node and bumps updated_at
func (r *PostgresNodeRepository) UpdateParent(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, updated_at = $3
		WHERE id = $4 AND dataroom_id = $5
	`, r.tables.Nodes)

	return r.update(ctx, node, query, node.ParentID, node.Name, node.UpdatedAt, node.ID, node.DataroomID)
}

func (r *PostgresNodeRepository) update(ctx context.Context, node *models.Node, query string, args ...any) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflictFor(ctx, node)
		}
		return fmt.Errorf("update node: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}
	return nil
}

// FindByParentAndName finds a sibling by case-insensitive name
func (r *PostgresNodeRepository) FindByParentAndName(ctx context.Context, dataroomID string, parentID *string, name string) (*models.Node, error) {
	return r.findSibling(ctx, postgres.GetExecutor(ctx, r.pool), dataroomID, parentID, name)
}

func (r *PostgresNodeRepository) findSibling(ctx context.Context, executor repositories.DBTX, dataroomID string, parentID *string, name string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.dataroom_id = $1
		  AND n.parent_id IS NOT DISTINCT FROM $2
		  AND lower(n.name) = lower($3)
		LIMIT 1
	`, nodeColumns, r.tables.Nodes)

	node, err := scanNode(executor.QueryRow(ctx, query, dataroomID, parentID, strings.TrimSpace(name)))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find node by name: %w", err)
	}
	return node, nil
}

// ListChildren lists immediate children of a folder (nil = top level)
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, dataroomID string, parentID *string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.dataroom_id = $1 AND n.parent_id IS NOT DISTINCT FROM $2
	`, nodeColumns, r.tables.Nodes)

	return r.list(ctx, query, dataroomID, parentID)
}

// ListByDataroom returns every node in a data room
func (r *PostgresNodeRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s n WHERE n.dataroom_id = $1`, nodeColumns, r.tables.Nodes)
	return r.list(ctx, query, dataroomID)
}

// ListDescendants returns the node and its whole subtree in one recursive query
func (r *PostgresNodeRepository) ListDescendants(ctx context.Context, nodeID, dataroomID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1 AND dataroom_id = $2
			UNION
			SELECT c.id FROM %[1]s c
			JOIN subtree s ON c.parent_id = s.id
			WHERE c.dataroom_id = $2
		)
		SELECT %[2]s
		FROM %[1]s n
		JOIN subtree s ON s.id = n.id
	`, r.tables.Nodes, nodeColumns)

	return r.list(ctx, query, nodeID, dataroomID)
}

// ListByIDs returns the nodes among ids owned by userID
func (r *PostgresNodeRepository) ListByIDs(ctx context.Context, ids []string, userID string) ([]models.Node, error) {
	if len(ids) == 0 {
		return []models.Node{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		JOIN %s d ON d.id = n.dataroom_id
		WHERE n.id = ANY($1) AND d.user_id = $2
	`, nodeColumns, r.tables.Nodes, r.tables.Datarooms)

	return r.list(ctx, query, ids, userID)
}

// DeleteCascade deletes the given nodes. ON DELETE CASCADE removes descendants.
func (r *PostgresNodeRepository) DeleteCascade(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *PostgresNodeRepository) list(ctx context.Context, query string, args ...any) ([]models.Node, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// conflictFor looks up the sibling that caused a unique violation. The
// violation aborts any open transaction, so the lookup goes to the pool.
// A sibling written by another transaction is committed by the time
// Postgres reports the violation.
func (r *PostgresNodeRepository) conflictFor(ctx context.Context, node *models.Node) error {
	existing, err := r.findSibling(ctx, r.pool, node.DataroomID, node.ParentID, node.Name)
	if err != nil {
		// Fallback to generic conflict error if the sibling can't be read back
		return fmt.Errorf("node %q: %w", node.Name, domain.ErrConflict)
	}
	return domain.NewNameConflict(node.Name, strings.ToLower(string(existing.Type)), existing.ID)
}

func scanNode(row pgx.Row) (*models.Node, error) {
	var node models.Node
	var nodeType string
	err := row.Scan(
		&node.ID,
		&node.DataroomID,
		&node.ParentID,
		&node.Name,
		&nodeType,
		&node.FilePath,
		&node.MimeType,
		&node.Size,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	node.Type = models.NodeType(nodeType)
	return &node, nil
}
