// Package memstore provides an in-memory docsgate.ObjectStore.
// It is used to exercise routers and handlers without a real bucket.
package memstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/sagarc03/docsgate"
)

// Entry is a stored object.
type Entry struct {
	Content  []byte
	Metadata docsgate.Metadata
}

// Store is a map-backed object store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Put stores content under key. Content type falls back to the key's
// extension and the etag to the sha256 of the content.
func (s *Store) Put(key string, content []byte, meta docsgate.Metadata) {
	if meta.ContentType == "" {
		meta.ContentType = docsgate.ContentTypeByExtension(key)
	}
	if meta.ETag == "" {
		sum := sha256.Sum256(content)
		meta.ETag = hex.EncodeToString(sum[:])
	}
	if meta.LastModified.IsZero() {
		meta.LastModified = s.now().UTC().Truncate(time.Second)
	}
	meta.Size = int64(len(content))

	data := make([]byte, len(content))
	copy(data, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Content: data, Metadata: meta}
}

// PutString is a shorthand for Put with string content and default metadata.
func (s *Store) PutString(key, content string) {
	s.Put(key, []byte(content), docsgate.Metadata{})
}

// Delete removes key. Returns docsgate.ErrNotFound if it does not exist.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return docsgate.ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns a reader over a copy-free view of the stored content.
// Returns docsgate.ErrNotFound if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (docsgate.Object, error) {
	if err := ctx.Err(); err != nil {
		return docsgate.Object{}, err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return docsgate.Object{}, docsgate.ErrNotFound
	}

	return docsgate.Object{
		Key:      key,
		Body:     io.NopCloser(bytes.NewReader(entry.Content)),
		Metadata: entry.Metadata,
	}, nil
}
