// Package sqlite provides a SQLite-backed analytics store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// schema creates the analytics table on first open. The key column carries
// the deterministic record key, so redelivered events land on the same row.
const schema = `
CREATE TABLE IF NOT EXISTS analytics_records (
	key           TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	filename      TEXT NOT NULL,
	model         TEXT NOT NULL,
	question      TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost          REAL NOT NULL,
	updated_at    TEXT NOT NULL
);
`

// Ensure AnalyticsStore implements the interface.
var _ driven.AnalyticsStore = (*AnalyticsStore)(nil)

// AnalyticsStore is a SQLite-backed implementation of driven.AnalyticsStore.
type AnalyticsStore struct {
	db   *sql.DB
	path string
}

// NewAnalyticsStore opens (or creates) the analytics database under dataDir.
// If dataDir is empty, defaults to ~/.paperquery/data/analytics.db.
func NewAnalyticsStore(dataDir string) (*AnalyticsStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperquery", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "analytics.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating analytics schema: %w", err)
	}

	return &AnalyticsStore{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *AnalyticsStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *AnalyticsStore) Path() string {
	return s.path
}

// Upsert writes the record, replacing any existing row with the same key.
func (s *AnalyticsStore) Upsert(ctx context.Context, rec domain.AnalyticsRecord) error {
	if rec.Key == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_records (key, kind, filename, model, question, input_tokens, output_tokens, cost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind = excluded.kind,
			filename = excluded.filename,
			model = excluded.model,
			question = excluded.question,
			input_tokens = excluded.input_tokens,
			output_tokens = excluded.output_tokens,
			cost = excluded.cost,
			updated_at = excluded.updated_at
	`, rec.Key, string(rec.Kind), rec.Filename, rec.Model, rec.Question,
		rec.InputTokens, rec.OutputTokens, rec.Cost,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("upserting analytics record: %w", err)
	}
	return nil
}

// Get retrieves a record by key. Returns domain.ErrNotFound if absent.
func (s *AnalyticsStore) Get(ctx context.Context, key string) (*domain.AnalyticsRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, kind, filename, model, question, input_tokens, output_tokens, cost, updated_at
		FROM analytics_records WHERE key = ?
	`, key)

	var rec domain.AnalyticsRecord
	var kind, updatedAt string
	err := row.Scan(&rec.Key, &kind, &rec.Filename, &rec.Model, &rec.Question,
		&rec.InputTokens, &rec.OutputTokens, &rec.Cost, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analytics record: %w", err)
	}

	rec.Kind = domain.TaskKind(kind)
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = ts
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (s *AnalyticsStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analytics_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting analytics records: %w", err)
	}
	return n, nil
}
