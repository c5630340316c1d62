package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/adapters/driven/storage/memory"
	"github.com/paperquery/paperquery/internal/core/domain"
)

func fastConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Stream:        "llm_events",
		Group:         "analytics_group",
		Consumer:      "analytics-test",
		JoinAttempts:  2,
		JoinDelay:     time.Millisecond,
		IdleSleep:     time.Millisecond,
		ErrorSleep:    time.Millisecond,
		DegradedSleep: time.Millisecond,
	}
}

func appendEvent(t *testing.T, broker *memory.StreamBroker, kind domain.TaskKind, filename, question string) string {
	t.Helper()

	event := domain.CompletionEvent{
		Kind:         kind,
		Filename:     filename,
		Model:        "gpt-4",
		Question:     question,
		InputTokens:  100,
		OutputTokens: 50,
		Cost:         0.006,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := broker.Append(context.Background(), "llm_events", event.Fields())
	require.NoError(t, err)
	return id
}

// startConsumer runs Start in the background and returns its exit error
// channel.
func startConsumer(t *testing.T, c *StreamConsumer) <-chan error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()
	t.Cleanup(func() {
		c.Stop()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Error("consumer did not stop")
		}
	})
	return errCh
}

func TestConsumer_ProcessesAndAcks(t *testing.T) {
	broker := memory.NewStreamBroker()
	analytics := memory.NewAnalyticsStore()

	sumID := appendEvent(t, broker, domain.TaskSummarize, "paper.pdf", "")
	qID := appendEvent(t, broker, domain.TaskQuestion, "paper.pdf", "what is it?")

	consumer := NewStreamConsumer(broker, analytics, fastConsumerConfig())
	startConsumer(t, consumer)

	require.Eventually(t, func() bool {
		return consumer.Stats().Processed == 2
	}, time.Second, time.Millisecond)

	stats := consumer.Stats()
	assert.Equal(t, domain.ConsumerRunning, stats.State)
	assert.EqualValues(t, 1, stats.Summaries)
	assert.EqualValues(t, 1, stats.Questions)
	assert.True(t, broker.Acked("llm_events", "analytics_group", sumID))
	assert.True(t, broker.Acked("llm_events", "analytics_group", qID))

	count, err := analytics.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec, err := analytics.Get(context.Background(), "summarize:paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", rec.Model)
	assert.InDelta(t, 0.006, rec.Cost, 1e-9)
}

// Redelivered entries overwrite their records instead of duplicating them.
func TestConsumer_RedeliveryIsIdempotent(t *testing.T) {
	broker := memory.NewStreamBroker()
	analytics := memory.NewAnalyticsStore()

	appendEvent(t, broker, domain.TaskSummarize, "paper.pdf", "")
	appendEvent(t, broker, domain.TaskQuestion, "paper.pdf", "what is it?")

	consumer := NewStreamConsumer(broker, analytics, fastConsumerConfig())
	startConsumer(t, consumer)

	require.Eventually(t, func() bool {
		return consumer.Stats().Processed == 2
	}, time.Second, time.Millisecond)

	broker.Rewind("llm_events", "analytics_group")

	require.Eventually(t, func() bool {
		return consumer.Stats().Processed == 4
	}, time.Second, time.Millisecond)

	count, err := analytics.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count, "replayed events must not create new records")
}

func TestConsumer_SkipsMalformedEntries(t *testing.T) {
	broker := memory.NewStreamBroker()
	analytics := memory.NewAnalyticsStore()

	badID, err := broker.Append(context.Background(), "llm_events", map[string]any{
		"kind":     "translate",
		"filename": "paper.pdf",
	})
	require.NoError(t, err)
	appendEvent(t, broker, domain.TaskSummarize, "paper.pdf", "")

	consumer := NewStreamConsumer(broker, analytics, fastConsumerConfig())
	startConsumer(t, consumer)

	require.Eventually(t, func() bool {
		stats := consumer.Stats()
		return stats.Processed == 1 && stats.Skipped == 1
	}, time.Second, time.Millisecond)

	// The malformed entry is acked anyway so it never redelivers.
	assert.True(t, broker.Acked("llm_events", "analytics_group", badID))

	count, err := analytics.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConsumer_DegradesAndRecovers(t *testing.T) {
	broker := memory.NewStreamBroker()
	analytics := memory.NewAnalyticsStore()

	consumer := NewStreamConsumer(broker, analytics, fastConsumerConfig())
	startConsumer(t, consumer)

	require.Eventually(t, func() bool {
		return consumer.Stats().State == domain.ConsumerRunning
	}, time.Second, time.Millisecond)

	// One failed claim degrades the consumer; the backoff then returns it
	// to the claim loop.
	broker.FailNext(1)
	require.Eventually(t, func() bool {
		return consumer.Stats().ConnectionErrors >= 1
	}, time.Second, time.Millisecond)

	appendEvent(t, broker, domain.TaskSummarize, "paper.pdf", "")
	require.Eventually(t, func() bool {
		stats := consumer.Stats()
		return stats.Processed == 1 && stats.State == domain.ConsumerRunning
	}, time.Second, time.Millisecond)
}

func TestConsumer_BoundedJoinFailure(t *testing.T) {
	broker := memory.NewStreamBroker()
	broker.FailNext(10)

	consumer := NewStreamConsumer(broker, memory.NewAnalyticsStore(), fastConsumerConfig())
	err := consumer.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	assert.Equal(t, domain.ConsumerStopped, consumer.Stats().State)
	assert.EqualValues(t, 2, consumer.Stats().ConnectionErrors)
}

func TestConsumer_DoubleStartRejected(t *testing.T) {
	broker := memory.NewStreamBroker()
	consumer := NewStreamConsumer(broker, memory.NewAnalyticsStore(), fastConsumerConfig())
	startConsumer(t, consumer)

	require.Eventually(t, func() bool {
		return consumer.Stats().State == domain.ConsumerRunning
	}, time.Second, time.Millisecond)

	err := consumer.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrConsumerRunning)
}

func TestConsumer_StopWithoutStart(t *testing.T) {
	consumer := NewStreamConsumer(memory.NewStreamBroker(), memory.NewAnalyticsStore(), fastConsumerConfig())
	assert.NoError(t, consumer.Stop())
}

func TestConsumer_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewStreamConsumer(memory.NewStreamBroker(), memory.NewAnalyticsStore(), fastConsumerConfig())

	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Start(ctx) }()

	require.Eventually(t, func() bool {
		return consumer.Stats().State == domain.ConsumerRunning
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not exit on cancellation")
	}
	assert.Equal(t, domain.ConsumerStopped, consumer.Stats().State)
}
