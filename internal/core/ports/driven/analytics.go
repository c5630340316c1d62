package driven

import (
	"context"

	"github.com/paperquery/paperquery/internal/core/domain"
)

// AnalyticsStore persists usage analytics records derived from stream
// events. Upsert is keyed so redelivered events overwrite rather than
// duplicate; records are never deleted by this subsystem.
type AnalyticsStore interface {
	// Upsert stores or replaces the record under its key.
	Upsert(ctx context.Context, rec domain.AnalyticsRecord) error

	// Get retrieves a record by key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (*domain.AnalyticsRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
