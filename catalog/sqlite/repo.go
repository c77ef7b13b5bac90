// Package sqlite implements the catalog repo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/docsgate"

	_ "modernc.org/sqlite" // SQLite driver
)

type Repo struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

// NewRepo creates a Repo over an open database. Tables are validated.
func NewRepo(db *sql.DB, tables docsgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: tables.Objects, now: time.Now}, nil
}

// Open opens a SQLite database at dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func (r *Repo) Get(ctx context.Context, path string) (docsgate.ObjectEntry, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT path, content_type, etag, size_bytes, modified_at
		FROM %s
		WHERE path = ?`, quoteIdentifier(r.tableName))

	var e docsgate.ObjectEntry
	var modifiedAt string

	err := r.db.QueryRowContext(ctx, query, path).Scan(
		&e.Path, &e.ContentType, &e.ETag, &e.Size, &modifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docsgate.ObjectEntry{}, docsgate.ErrNotFound
		}
		return docsgate.ObjectEntry{}, fmt.Errorf("get: %w", err)
	}

	e.ModTime, err = time.Parse(time.RFC3339Nano, modifiedAt)
	if err != nil {
		return docsgate.ObjectEntry{}, fmt.Errorf("get: parse modified_at: %w", err)
	}

	return e, nil
}

// Upsert creates or replaces the row for entry.Path. It reports whether a
// new row was created.
func (r *Repo) Upsert(ctx context.Context, entry docsgate.ObjectEntry) (bool, error) {
	// Check if entry exists first to determine if this is an insert or update
	var existingID string
	checkQuery := fmt.Sprintf(`SELECT id FROM %s WHERE path = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated
	err := r.db.QueryRowContext(ctx, checkQuery, entry.Path).Scan(&existingID)
	isInsert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isInsert {
		return false, fmt.Errorf("upsert: check existing: %w", err)
	}

	now := r.now().UTC().Format(time.RFC3339Nano)
	modifiedAt := entry.ModTime.UTC().Format(time.RFC3339Nano)

	if isInsert {
		insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`INSERT INTO %s (id, path, content_type, etag, size_bytes, modified_at, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

		_, err = r.db.ExecContext(ctx, insertQuery,
			uuid.New().String(), entry.Path, entry.ContentType, entry.ETag, entry.Size, modifiedAt, now,
		)
		if err != nil {
			return false, fmt.Errorf("upsert: insert: %w", err)
		}
		return true, nil
	}

	updateQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET content_type = ?, etag = ?, size_bytes = ?, modified_at = ?, indexed_at = ?
		WHERE id = ?`, quoteIdentifier(r.tableName))

	_, err = r.db.ExecContext(ctx, updateQuery,
		entry.ContentType, entry.ETag, entry.Size, modifiedAt, now, existingID,
	)
	if err != nil {
		return false, fmt.Errorf("upsert: update: %w", err)
	}

	return false, nil
}

// Delete removes the row for path. Returns docsgate.ErrNotFound if there is none.
func (r *Repo) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE path = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	res, err := r.db.ExecContext(ctx, query, path)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}
	if n == 0 {
		return docsgate.ErrNotFound
	}

	return nil
}

// Paths returns every indexed path in lexical order.
func (r *Repo) Paths(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT path FROM %s ORDER BY path`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("paths: scan: %w", err)
		}
		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}

	return paths, nil
}
