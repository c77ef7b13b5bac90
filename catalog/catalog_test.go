package catalog_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog"
	"github.com/sagarc03/docsgate/filesystem"
)

type SpyRepo struct {
	mock.Mock
}

func (s *SpyRepo) Get(ctx context.Context, path string) (docsgate.ObjectEntry, error) {
	args := s.Called(ctx, path)
	return args.Get(0).(docsgate.ObjectEntry), args.Error(1)
}

func (s *SpyRepo) Upsert(ctx context.Context, entry docsgate.ObjectEntry) (bool, error) {
	args := s.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (s *SpyRepo) Delete(ctx context.Context, path string) error {
	args := s.Called(ctx, path)
	return args.Error(0)
}

func (s *SpyRepo) Paths(ctx context.Context) ([]string, error) {
	args := s.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

type stubWalker struct {
	entries []docsgate.ObjectEntry
	err     error
}

func (w stubWalker) Walk(context.Context) ([]docsgate.ObjectEntry, error) {
	return w.entries, w.err
}

func writeSite(t *testing.T, files map[string]string) (string, *filesystem.Store) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return dir, filesystem.NewFileStorage(root)
}

func connectSQLite(t *testing.T) catalog.Repo {
	t.Helper()

	repo, cleanup, err := catalog.Connect(context.Background(), catalog.Config{
		Type:   "sqlite",
		DSN:    filepath.Join(t.TempDir(), "catalog.db"),
		Tables: docsgate.Tables{Objects: "docsgate_objects"},
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return repo
}

func TestConnect_UnsupportedType(t *testing.T) {
	_, _, err := catalog.Connect(context.Background(), catalog.Config{
		Type:   "mysql",
		Tables: docsgate.Tables{Objects: "docsgate_objects"},
	})
	assert.ErrorIs(t, err, docsgate.ErrInvalidInput)
}

func TestConnect_InvalidTables(t *testing.T) {
	_, _, err := catalog.Connect(context.Background(), catalog.Config{
		Type:   "sqlite",
		DSN:    filepath.Join(t.TempDir(), "catalog.db"),
		Tables: docsgate.Tables{Objects: "Bad Name"},
	})
	assert.ErrorIs(t, err, docsgate.ErrInvalidInput)
}

func TestIndex_ThenServe(t *testing.T) {
	_, files := writeSite(t, map[string]string{
		"latest-version.txt":    "v1.0\n",
		"v1.0/guide/index.html": "<h1>guide</h1>",
	})
	repo := connectSQLite(t)
	ctx := context.Background()

	result, err := catalog.Index(ctx, repo, files)
	require.NoError(t, err)
	assert.Equal(t, catalog.IndexResult{Created: 2}, result)

	store := catalog.NewStore(repo, files)
	obj, err := store.Get(ctx, "v1.0/guide/index.html")
	require.NoError(t, err)

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())

	assert.Equal(t, "<h1>guide</h1>", string(data))
	assert.Equal(t, "text/html; charset=utf-8", obj.Metadata.ContentType)
	assert.Len(t, obj.Metadata.ETag, 64)
	assert.Equal(t, int64(14), obj.Metadata.Size)

	result, err = catalog.Index(ctx, repo, files)
	require.NoError(t, err)
	assert.Equal(t, catalog.IndexResult{Updated: 2}, result)
}

func TestIndex_RemovesStaleRows(t *testing.T) {
	dir, files := writeSite(t, map[string]string{
		"v1.0/a.html": "a",
		"v1.0/b.html": "b",
	})
	repo := connectSQLite(t)
	ctx := context.Background()

	_, err := catalog.Index(ctx, repo, files)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "v1.0", "b.html")))

	result, err := catalog.Index(ctx, repo, files)
	require.NoError(t, err)
	assert.Equal(t, catalog.IndexResult{Updated: 1, Removed: 1}, result)

	_, err = repo.Get(ctx, "v1.0/b.html")
	assert.ErrorIs(t, err, docsgate.ErrNotFound)
}

func TestIndex_WalkError(t *testing.T) {
	walkErr := errors.New("permission denied")
	repo := new(SpyRepo)

	_, err := catalog.Index(context.Background(), repo, stubWalker{err: walkErr})

	assert.ErrorIs(t, err, walkErr)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestIndex_UpsertError(t *testing.T) {
	upsertErr := errors.New("disk full")
	repo := new(SpyRepo)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(false, upsertErr)

	walker := stubWalker{entries: []docsgate.ObjectEntry{{Path: "a.html"}}}
	_, err := catalog.Index(context.Background(), repo, walker)

	assert.ErrorIs(t, err, upsertErr)
	assert.Contains(t, err.Error(), "index 'a.html'")
}

func TestStore_Get_NotCataloged(t *testing.T) {
	_, files := writeSite(t, map[string]string{"v1.0/a.html": "a"})
	repo := connectSQLite(t)

	store := catalog.NewStore(repo, files)
	_, err := store.Get(context.Background(), "v1.0/a.html")

	assert.ErrorIs(t, err, docsgate.ErrNotFound)
}

func TestStore_Get_FileMissing(t *testing.T) {
	_, files := writeSite(t, nil)
	repo := new(SpyRepo)
	repo.On("Get", mock.Anything, "v1.0/a.html").Return(docsgate.ObjectEntry{
		Path:        "v1.0/a.html",
		ContentType: "text/html",
		ModTime:     time.Now(),
	}, nil)

	store := catalog.NewStore(repo, files)
	_, err := store.Get(context.Background(), "v1.0/a.html")

	assert.ErrorIs(t, err, docsgate.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestStore_Get_RepoError(t *testing.T) {
	repoErr := errors.New("database is locked")
	_, files := writeSite(t, nil)
	repo := new(SpyRepo)
	repo.On("Get", mock.Anything, "a.html").Return(docsgate.ObjectEntry{}, repoErr)

	store := catalog.NewStore(repo, files)
	_, err := store.Get(context.Background(), "a.html")

	assert.ErrorIs(t, err, repoErr)
	assert.NotErrorIs(t, err, docsgate.ErrNotFound)
}

func TestStore_Get_ServesCatalogMetadata(t *testing.T) {
	_, files := writeSite(t, map[string]string{"v1.0/data": "{}"})
	repo := connectSQLite(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, docsgate.ObjectEntry{
		Path:        "v1.0/data",
		ContentType: "application/json",
		ETag:        "pinned",
	})
	require.NoError(t, err)

	obj, err := catalog.NewStore(repo, files).Get(ctx, "v1.0/data")
	require.NoError(t, err)
	defer func() { _ = obj.Body.Close() }()

	assert.Equal(t, "application/json", obj.Metadata.ContentType)
	assert.Equal(t, "pinned", obj.Metadata.ETag)
	assert.Equal(t, int64(2), obj.Metadata.Size)
}
