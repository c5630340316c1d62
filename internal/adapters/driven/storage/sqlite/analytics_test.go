package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/core/domain"
)

func newTestStore(t *testing.T) *AnalyticsStore {
	t.Helper()

	store, err := NewAnalyticsStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnalyticsStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.AnalyticsRecord{
		Key:          "summarize:paper.pdf",
		Kind:         domain.TaskSummarize,
		Filename:     "paper.pdf",
		Model:        "gpt-4",
		InputTokens:  1200,
		OutputTokens: 300,
		Cost:         0.054,
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Upsert(ctx, rec))

	got, err := store.Get(ctx, rec.Key)
	require.NoError(t, err)
	assert.Equal(t, rec.Key, got.Key)
	assert.Equal(t, domain.TaskSummarize, got.Kind)
	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, 1200, got.InputTokens)
	assert.Equal(t, 300, got.OutputTokens)
	assert.InDelta(t, 0.054, got.Cost, 1e-9)
	assert.WithinDuration(t, rec.UpdatedAt, got.UpdatedAt, time.Second)
}

func TestAnalyticsStore_UpsertIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.AnalyticsRecord{
		Key:      "question:paper.pdf:" + domain.QuestionHash("what is it about?"),
		Kind:     domain.TaskQuestion,
		Filename: "paper.pdf",
		Model:    "claude-3",
		Question: "what is it about?",
		Cost:     0.02,
	}
	require.NoError(t, store.Upsert(ctx, rec))

	// A redelivered event writes the same key again: the row is replaced,
	// not duplicated.
	rec.Model = "gpt-4"
	require.NoError(t, store.Upsert(ctx, rec))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Get(ctx, rec.Key)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", got.Model)
}

func TestAnalyticsStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "summarize:nope.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsStore_UpsertRejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)

	err := store.Upsert(context.Background(), domain.AnalyticsRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyticsStore_CountsDistinctKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"first question", "second question"} {
		ev := domain.CompletionEvent{
			Kind:     domain.TaskQuestion,
			Filename: "paper.pdf",
			Model:    "gemini-pro",
			Question: q,
		}
		require.NoError(t, store.Upsert(ctx, domain.RecordFromEvent(ev)))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
