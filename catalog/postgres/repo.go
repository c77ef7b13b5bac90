// Package postgres implements the catalog repo using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/docsgate"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewRepo creates a Repo over pool. Tables are validated.
func NewRepo(pool *pgxpool.Pool, tables docsgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Objects}.Sanitize()}, nil
}

// Open connects to PostgreSQL at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

func (r *Repo) Get(ctx context.Context, path string) (docsgate.ObjectEntry, error) {
	query := fmt.Sprintf(`
		SELECT path, content_type, etag, size_bytes, modified_at
		FROM %s
		WHERE path = $1
	`, r.tableName)

	var e docsgate.ObjectEntry
	err := r.pool.QueryRow(ctx, query, path).Scan(
		&e.Path, &e.ContentType, &e.ETag, &e.Size, &e.ModTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docsgate.ObjectEntry{}, docsgate.ErrNotFound
		}
		return docsgate.ObjectEntry{}, fmt.Errorf("get: %w", err)
	}

	e.ModTime = e.ModTime.UTC()
	return e, nil
}

// Upsert creates or replaces the row for entry.Path. It reports whether a
// new row was created.
func (r *Repo) Upsert(ctx context.Context, entry docsgate.ObjectEntry) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, content_type, etag, size_bytes, modified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (path) DO UPDATE
		SET content_type = EXCLUDED.content_type,
			etag = EXCLUDED.etag,
			size_bytes = EXCLUDED.size_bytes,
			modified_at = EXCLUDED.modified_at,
			indexed_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`, r.tableName)

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		entry.Path, entry.ContentType, entry.ETag, entry.Size, entry.ModTime.UTC(),
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}

	return inserted, nil
}

// Delete removes the row for path. Returns docsgate.ErrNotFound if there is none.
func (r *Repo) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE path = $1`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, path)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return docsgate.ErrNotFound
	}

	return nil
}

// Paths returns every indexed path in lexical order.
func (r *Repo) Paths(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT path FROM %s ORDER BY path COLLATE "C"`, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}

	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}

	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}
