package memory

import (
	"context"
	"sync"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure AnalyticsStore implements the interface.
var _ driven.AnalyticsStore = (*AnalyticsStore)(nil)

// AnalyticsStore is an in-memory implementation of driven.AnalyticsStore.
type AnalyticsStore struct {
	mu      sync.RWMutex
	records map[string]domain.AnalyticsRecord
}

// NewAnalyticsStore creates a new in-memory analytics store.
func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{records: make(map[string]domain.AnalyticsRecord)}
}

// Upsert stores or replaces the record under its key.
func (s *AnalyticsStore) Upsert(_ context.Context, rec domain.AnalyticsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

// Get retrieves a record by key, or domain.ErrNotFound.
func (s *AnalyticsStore) Get(_ context.Context, key string) (*domain.AnalyticsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (s *AnalyticsStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
