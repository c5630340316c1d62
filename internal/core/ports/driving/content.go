package driving

import (
	"context"

	"github.com/paperquery/paperquery/internal/core/domain"
)

// ContentResolver resolves document text through the tiered fallback chain
// and owns the document lifecycle.
type ContentResolver interface {
	// Resolve returns the document's plain text, trying cache, the direct
	// locator hint, object-store key variants, then the local filesystem,
	// in that order. A miss across all tiers is domain.ErrNotFound.
	Resolve(ctx context.Context, filename, locatorHint string) (string, error)

	// Ingest extracts, chunks, and durably stores a new document.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error)

	// Get returns the full stored document, or domain.ErrNotFound.
	Get(ctx context.Context, filename string) (*domain.Document, error)

	// Delete removes the durable object and the cache entry.
	Delete(ctx context.Context, filename string) error
}

// CatalogService enumerates known documents.
type CatalogService interface {
	// List merges object-store and local-filesystem listings into a
	// catalog deduplicated by filename. Entries sourced from the object
	// store carry a freshly minted time-limited URL.
	List(ctx context.Context) ([]domain.CatalogEntry, error)
}
