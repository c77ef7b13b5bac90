package docsgate

import "context"

// ObjectStore defines read access to the bucket holding the documentation.
// Implementations include a local directory, S3-compatible buckets, and a
// database catalog over a local directory.
//
// All methods accept a context for cancellation and timeout control.
type ObjectStore interface {
	// Get retrieves an object by key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: Storage key without a leading slash, e.g. "v1.0/guide/index.html"
	//
	// Returns:
	//   - Object: The object body and its HTTP metadata
	//   - error: ErrNotFound if the key does not exist, or other storage errors
	//
	// The caller is responsible for closing Object.Body.
	Get(ctx context.Context, key string) (Object, error)
}

// ObjectStoreFunc adapts a function to the ObjectStore interface.
type ObjectStoreFunc func(ctx context.Context, key string) (Object, error)

// Get calls f(ctx, key).
func (f ObjectStoreFunc) Get(ctx context.Context, key string) (Object, error) {
	return f(ctx, key)
}
