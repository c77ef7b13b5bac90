package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTables = docsgate.Tables{Objects: "docsgate_objects"}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(context.Background(), db, testTables))
	return db
}

func newTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	repo, err := sqlite.NewRepo(newTestDB(t), testTables)
	require.NoError(t, err)
	return repo
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, sqlite.Migrate(ctx, db, testTables))
	assert.NoError(t, sqlite.ValidateSchema(ctx, db, testTables))
}

func TestMigrate_InvalidTableName(t *testing.T) {
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = sqlite.Migrate(context.Background(), db, docsgate.Tables{Objects: "bad-name"})
	assert.ErrorIs(t, err, docsgate.ErrInvalidInput)
}

func TestValidateSchema_MissingTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, sqlite.DropTables(ctx, db, testTables))

	err := sqlite.ValidateSchema(ctx, db, testTables)
	assert.ErrorContains(t, err, "does not exist")
}

func TestValidateSchema_MissingColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE "other_objects" (id TEXT NOT NULL PRIMARY KEY, path TEXT NOT NULL)`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, docsgate.Tables{Objects: "other_objects"})
	assert.ErrorContains(t, err, "missing column")
}

func TestRepo_UpsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	modTime := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

	created, err := repo.Upsert(ctx, docsgate.ObjectEntry{
		Path:        "v1.0/index.html",
		Size:        12,
		ETag:        "abc",
		ContentType: "text/html; charset=utf-8",
		ModTime:     modTime,
	})
	require.NoError(t, err)
	assert.True(t, created)

	entry, err := repo.Get(ctx, "v1.0/index.html")
	require.NoError(t, err)

	assert.Equal(t, "v1.0/index.html", entry.Path)
	assert.Equal(t, int64(12), entry.Size)
	assert.Equal(t, "abc", entry.ETag)
	assert.Equal(t, "text/html; charset=utf-8", entry.ContentType)
	assert.True(t, modTime.Equal(entry.ModTime))
}

func TestRepo_Upsert_UpdatesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, docsgate.ObjectEntry{Path: "a.html", ETag: "v1", ContentType: "text/html"})
	require.NoError(t, err)

	created, err := repo.Upsert(ctx, docsgate.ObjectEntry{Path: "a.html", ETag: "v2", ContentType: "text/plain", Size: 3})
	require.NoError(t, err)
	assert.False(t, created)

	entry, err := repo.Get(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "v2", entry.ETag)
	assert.Equal(t, "text/plain", entry.ContentType)
	assert.Equal(t, int64(3), entry.Size)
}

func TestRepo_Get_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing.html")
	assert.ErrorIs(t, err, docsgate.ErrNotFound)
}

func TestRepo_DeleteAndPaths(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, p := range []string{"b.html", "a.html", "c/index.html"} {
		_, err := repo.Upsert(ctx, docsgate.ObjectEntry{Path: p, ETag: "x", ContentType: "text/html"})
		require.NoError(t, err)
	}

	paths, err := repo.Paths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html", "c/index.html"}, paths)

	require.NoError(t, repo.Delete(ctx, "b.html"))
	assert.ErrorIs(t, repo.Delete(ctx, "b.html"), docsgate.ErrNotFound)

	paths, err = repo.Paths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "c/index.html"}, paths)
}

func TestRepo_Paths_Empty(t *testing.T) {
	repo := newTestRepo(t)

	paths, err := repo.Paths(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}
