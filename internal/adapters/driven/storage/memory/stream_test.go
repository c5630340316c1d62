package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/core/domain"
)

func TestStreamBroker_ClaimAdvancesCursor(t *testing.T) {
	broker := NewStreamBroker()
	ctx := context.Background()

	id1, err := broker.Append(ctx, "events", map[string]any{"n": 1})
	require.NoError(t, err)
	_, err = broker.Append(ctx, "events", map[string]any{"n": 2})
	require.NoError(t, err)

	require.NoError(t, broker.EnsureGroup(ctx, "events", "g"))

	first, err := broker.Claim(ctx, "events", "g", "c", 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, id1, first[0].ID)
	assert.Equal(t, "1", first[0].Fields["n"])

	second, err := broker.Claim(ctx, "events", "g", "c", 10)
	require.NoError(t, err)
	require.Len(t, second, 1, "claimed entries are not redelivered")

	third, err := broker.Claim(ctx, "events", "g", "c", 10)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestStreamBroker_RewindRedelivers(t *testing.T) {
	broker := NewStreamBroker()
	ctx := context.Background()

	id, err := broker.Append(ctx, "events", map[string]any{"n": 1})
	require.NoError(t, err)

	entries, err := broker.Claim(ctx, "events", "g", "c", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	broker.Rewind("events", "g")
	again, err := broker.Claim(ctx, "events", "g", "c", 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, id, again[0].ID)
}

func TestStreamBroker_AckTracking(t *testing.T) {
	broker := NewStreamBroker()
	ctx := context.Background()

	id, err := broker.Append(ctx, "events", map[string]any{"n": 1})
	require.NoError(t, err)

	assert.False(t, broker.Acked("events", "g", id))
	require.NoError(t, broker.Ack(ctx, "events", "g", id))
	assert.True(t, broker.Acked("events", "g", id))
}

func TestStreamBroker_FailNext(t *testing.T) {
	broker := NewStreamBroker()
	ctx := context.Background()

	broker.FailNext(2)

	_, err := broker.Append(ctx, "events", map[string]any{"n": 1})
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	err = broker.EnsureGroup(ctx, "events", "g")
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)

	// Both failures are spent; operations recover.
	_, err = broker.Append(ctx, "events", map[string]any{"n": 1})
	assert.NoError(t, err)
}
