// Package filesystem provides a local directory backend for docsgate.
// Objects are files below a root directory, keys are slash-separated
// relative paths, and content types are detected from file extensions.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/sagarc03/docsgate"
)

// Store provides read access to a directory tree.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens the file at key. Returns docsgate.ErrNotFound if the key is
// invalid, does not exist, or names a directory.
func (s *Store) Get(ctx context.Context, key string) (docsgate.Object, error) {
	f, info, err := s.Open(ctx, key)
	if err != nil {
		return docsgate.Object{}, err
	}

	return docsgate.Object{
		Key:  key,
		Body: f,
		Metadata: docsgate.Metadata{
			ContentType:  docsgate.ContentTypeByExtension(key),
			ETag:         statETag(info),
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		},
	}, nil
}

// Open opens the regular file at key without building metadata. It is used
// by backends that keep metadata elsewhere. The caller must close the file.
func (s *Store) Open(ctx context.Context, key string) (*os.File, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if !docsgate.IsValidKey(key) {
		return nil, nil, docsgate.ErrNotFound
	}

	f, err := s.root.Open(filepath.FromSlash(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil, docsgate.ErrNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", key, err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, nil, docsgate.ErrNotFound
	}

	return f, info, nil
}

// statETag derives an etag from size and modification time so Get does
// not have to read the whole file.
func statETag(info fs.FileInfo) string {
	return fmt.Sprintf("%x-%x", info.ModTime().UnixNano(), info.Size())
}

// Walk recursively walks the root directory and returns all files with their
// metadata including key, size, SHA256-based etag, and detected content type.
// This is intended for indexing a published site into a catalog.
func (s *Store) Walk(ctx context.Context) ([]docsgate.ObjectEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []docsgate.ObjectEntry{}

	err := s.walkDir(ctx, ".", &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to walk files: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, path string, entries *[]docsgate.ObjectEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), filepath.ToSlash(path))
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryPath := filepath.Join(path, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		etag, err := s.hashFile(entryPath)
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		key := filepath.ToSlash(entryPath)
		*entries = append(*entries, docsgate.ObjectEntry{
			Path:        key,
			Size:        info.Size(),
			ETag:        etag,
			ContentType: docsgate.ContentTypeByExtension(key),
			ModTime:     info.ModTime().UTC(),
		})
	}

	return nil
}

func (s *Store) hashFile(path string) (string, error) {
	f, err := s.root.Open(path)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	_, copyErr := io.Copy(h, f)

	if closeErr := f.Close(); closeErr != nil {
		slog.Warn("failed to close file", "path", path, "err", closeErr)
	}

	if copyErr != nil {
		return "", copyErr
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
