package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/docsgate"
)

// Migrate creates the catalog tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables docsgate.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createObjectsTable(ctx, pool, tables.Objects); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Objects, err)
	}

	return nil
}

// DropTables removes the catalog tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables docsgate.Tables) error {
	sql := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pgx.Identifier{tables.Objects}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Objects, err)
	}
	return nil
}

func createObjectsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexModifiedAt := pgx.Identifier{fmt.Sprintf("idx_%s_modified_at", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			path TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL,
			etag TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			modified_at TIMESTAMPTZ NOT NULL,
			indexed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (modified_at);
	`,
		quotedTable,
		indexModifiedAt, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create objects table: %w", err)
	}
	return nil
}
