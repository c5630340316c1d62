package driven

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object in a listing.
type ObjectInfo struct {
	// Key is the object's storage key.
	Key string

	// Size is the object size in bytes.
	Size int64

	// LastModified is when the object was last written.
	LastModified time.Time
}

// ObjectStore is the durable byte store for document originals.
// A missing object is reported as domain.ErrNotFound.
type ObjectStore interface {
	// Put stores data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the bytes stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error

	// List returns objects whose keys begin with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// PresignedURL mints a time-limited access URL for key.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
