package driven

import (
	"context"
	"time"
)

// CacheStore is a fast key-value store used as the first content
// resolution tier. A miss is reported as domain.ErrNotFound; any other
// error is an infrastructure fault the caller may treat as a miss.
type CacheStore interface {
	// Get returns the value stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys beginning with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
