package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sagarc03/docsgate"
)

// FileOpener opens the bytes of a cataloged object.
type FileOpener interface {
	Open(ctx context.Context, key string) (*os.File, fs.FileInfo, error)
}

// Store combines a catalog Repo with the directory it indexes.
type Store struct {
	repo  Repo
	files FileOpener
}

// NewStore creates a Store.
func NewStore(repo Repo, files FileOpener) *Store {
	return &Store{repo: repo, files: files}
}

// Get looks up key in the catalog and opens its file. Keys that are not
// cataloged are not found even if a file exists. A cataloged key whose file
// is missing is logged and reported as not found.
func (s *Store) Get(ctx context.Context, key string) (docsgate.Object, error) {
	if err := ctx.Err(); err != nil {
		return docsgate.Object{}, err
	}

	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, docsgate.ErrNotFound) {
			return docsgate.Object{}, docsgate.ErrNotFound
		}
		return docsgate.Object{}, fmt.Errorf("catalog get %s: %w", key, err)
	}

	f, info, err := s.files.Open(ctx, key)
	if err != nil {
		if errors.Is(err, docsgate.ErrNotFound) {
			slog.Warn("catalog entry has no file", "key", key)
			return docsgate.Object{}, docsgate.ErrNotFound
		}
		return docsgate.Object{}, fmt.Errorf("catalog open %s: %w", key, err)
	}

	return docsgate.Object{
		Key:  key,
		Body: f,
		Metadata: docsgate.Metadata{
			ContentType:  entry.ContentType,
			ETag:         entry.ETag,
			Size:         info.Size(),
			LastModified: entry.ModTime,
		},
	}, nil
}
