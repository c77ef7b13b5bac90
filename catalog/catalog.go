// Package catalog serves objects whose metadata is kept in a database and
// whose bytes live in a local directory.
//
// A catalog lets operators pin the content type and etag of each published
// file instead of inferring them at request time. Rows are produced by Index,
// which walks the directory and upserts one row per file.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog/postgres"
	"github.com/sagarc03/docsgate/catalog/sqlite"
)

// Repo defines metadata persistence for catalog entries.
type Repo interface {
	// Get returns the entry for path, or docsgate.ErrNotFound.
	Get(ctx context.Context, path string) (docsgate.ObjectEntry, error)
	// Upsert creates or replaces the entry. It reports whether a row was created.
	Upsert(ctx context.Context, entry docsgate.ObjectEntry) (bool, error)
	// Delete removes the entry for path, or returns docsgate.ErrNotFound.
	Delete(ctx context.Context, path string) error
	// Paths returns all indexed paths in lexical order.
	Paths(ctx context.Context) ([]string, error)
}

// Config holds the configuration for connecting to a catalog database.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"omitempty,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn"`
	// Tables holds the table names
	Tables docsgate.Tables `mapstructure:"tables"`
}

// Connect opens the configured database, runs migrations, validates the
// schema, and returns a Repo. The returned cleanup function closes the
// connection.
func Connect(ctx context.Context, cfg Config) (Repo, func(), error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, nil, fmt.Errorf("connect catalog: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, nil, fmt.Errorf("connect catalog: %w: unsupported database type: %s", docsgate.ErrInvalidInput, cfg.Type)
	}
}

func connectSQLite(ctx context.Context, dsn string, tables docsgate.Tables) (Repo, func(), error) {
	db, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	repo, err := setupSQLite(ctx, db, tables)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return repo, func() { _ = db.Close() }, nil
}

func setupSQLite(ctx context.Context, db *sql.DB, tables docsgate.Tables) (Repo, error) {
	if err := sqlite.Migrate(ctx, db, tables); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	if err := sqlite.ValidateSchema(ctx, db, tables); err != nil {
		return nil, fmt.Errorf("validate sqlite schema: %w", err)
	}

	repo, err := sqlite.NewRepo(db, tables)
	if err != nil {
		return nil, fmt.Errorf("create sqlite repo: %w", err)
	}

	return repo, nil
}

func connectPostgres(ctx context.Context, dsn string, tables docsgate.Tables) (Repo, func(), error) {
	pool, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	repo, err := setupPostgres(ctx, pool, tables)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repo, pool.Close, nil
}

func setupPostgres(ctx context.Context, pool *pgxpool.Pool, tables docsgate.Tables) (Repo, error) {
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	if err := postgres.ValidateSchema(ctx, pool, tables); err != nil {
		return nil, fmt.Errorf("validate postgres schema: %w", err)
	}

	repo, err := postgres.NewRepo(pool, tables)
	if err != nil {
		return nil, fmt.Errorf("create postgres repo: %w", err)
	}

	return repo, nil
}
