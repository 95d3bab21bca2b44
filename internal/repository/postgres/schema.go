package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes if they don't exist.
//
// Sibling names are unique per (data room, parent) ignoring case. Top-level
// nodes have a NULL parent, so the index coalesces it to ''.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
				user_id TEXT NOT NULL,
				name VARCHAR(255) NOT NULL,
				owner_email TEXT NOT NULL DEFAULT '',
				share_token TEXT UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Datarooms),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
				dataroom_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				parent_id TEXT REFERENCES %s(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('FOLDER', 'FILE')),
				file_path TEXT,
				mime_type TEXT,
				size BIGINT CHECK (size IS NULL OR size >= 0),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Nodes, tables.Datarooms, tables.Nodes),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				token TEXT PRIMARY KEY,
				dataroom_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				shared_folder_id TEXT REFERENCES %s(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.ShareLinks, tables.Datarooms, tables.Nodes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sdatarooms_user ON %s(user_id, created_at)`,
			tables.Prefix, tables.Datarooms),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%snodes_dataroom_parent ON %s(dataroom_id, parent_id)`,
			tables.Prefix, tables.Nodes),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%snodes_sibling_name ON %s(dataroom_id, COALESCE(parent_id, ''), lower(name))`,
			tables.Prefix, tables.Nodes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sshare_links_dataroom ON %s(dataroom_id)`,
			tables.Prefix, tables.ShareLinks),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropTables drops all tables in reverse dependency order
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.ShareLinks, tables.Nodes, tables.Datarooms} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData deletes every data room. Nodes and share links cascade.
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Datarooms); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
