package gallery

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a display name resolves to no stored object.
var ErrNotFound = errors.New("picture not found")

// ObjectInfo describes one stored object as reported by the store's listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// RemoveError reports a per-object failure from a batch removal. A batch
// removal can partially succeed; callers receive one RemoveError per key
// the store refused to delete.
type RemoveError struct {
	Key string
	Err error
}

// ObjectStore is the narrow view of an S3-compatible object store that the
// gallery needs. Metadata is an untyped string map on the wire; the store
// reports keys lower-cased. ReplaceMetadata rewrites the complete metadata
// map of an object in one operation, since partial metadata updates are not
// supported by S3-style stores.
type ObjectStore interface {
	// List returns every object under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Stat returns the user metadata attached to the object at key.
	Stat(ctx context.Context, key string) (map[string]string, error)

	// Get retrieves the raw object payload stored at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a new object at key with the given payload, content type,
	// and user metadata.
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error

	// ReplaceMetadata atomically replaces the complete user metadata map of
	// the object at key, leaving the payload untouched.
	ReplaceMetadata(ctx context.Context, key string, metadata map[string]string) error

	// Remove deletes the given keys in a single batch call. It returns the
	// number of objects deleted and any per-object errors; err is reserved
	// for failures of the batch call itself.
	Remove(ctx context.Context, keys []string) (deleted int, removeErrs []RemoveError, err error)

	// PresignedURL returns a time-limited, read-only URL for the object at
	// key.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
