package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
	testCleanup  func()
	tableCounter atomic.Int64
)

func TestMain(m *testing.M) {
	code := m.Run()

	if testCleanup != nil {
		testCleanup()
	}

	os.Exit(code)
}

// getSharedTestDatabase returns a database pool shared by all tests in the
// package. The container starts on first use.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			_ = testcontainers.TerminateContainer(pgContainer)
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testPoolErr = fmt.Errorf("connection string: %w", err)
			return
		}

		testPool, testPoolErr = postgres.Open(ctx, connectionStr)
	})

	require.NoError(t, testPoolErr)
	return testPool
}

// newTestRepo migrates a uniquely named table so tests do not share rows.
func newTestRepo(t *testing.T) (*postgres.Repo, *pgxpool.Pool, docsgate.Tables) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	tables := docsgate.Tables{Objects: fmt.Sprintf("objects_%d", tableCounter.Add(1))}

	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	t.Cleanup(func() { _ = postgres.DropTables(context.Background(), pool, tables) })

	repo, err := postgres.NewRepo(pool, tables)
	require.NoError(t, err)

	return repo, pool, tables
}

func TestMigrate_ValidatesSchema(t *testing.T) {
	_, pool, tables := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	assert.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
}

func TestValidateSchema_MissingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)

	err := postgres.ValidateSchema(context.Background(), pool, docsgate.Tables{Objects: "never_created"})
	assert.ErrorContains(t, err, "does not exist")
}

func TestRepo_UpsertAndGet(t *testing.T) {
	repo, _, _ := newTestRepo(t)
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
	assert.True(t, modTime.Equal(entry.ModTime))

	created, err = repo.Upsert(ctx, docsgate.ObjectEntry{
		Path:        "v1.0/index.html",
		Size:        20,
		ETag:        "def",
		ContentType: "text/html; charset=utf-8",
		ModTime:     modTime,
	})
	require.NoError(t, err)
	assert.False(t, created)

	entry, err = repo.Get(ctx, "v1.0/index.html")
	require.NoError(t, err)
	assert.Equal(t, "def", entry.ETag)
	assert.Equal(t, int64(20), entry.Size)
}

func TestRepo_Get_NotFound(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing.html")
	assert.ErrorIs(t, err, docsgate.ErrNotFound)
}

func TestRepo_DeleteAndPaths(t *testing.T) {
	repo, _, _ := newTestRepo(t)
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
}
