package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/core/ports/driving"
	"github.com/paperquery/paperquery/internal/logger"
)

// Ensure StreamConsumer implements the interface.
var _ driving.ConsumerControl = (*StreamConsumer)(nil)

// Consumer defaults. The loop timings are deliberately fixed: every wait
// in the consumer is individually bounded.
const (
	DefaultGroupName = "analytics_group"

	defaultClaimCount    = 10
	defaultJoinAttempts  = 5
	defaultJoinDelay     = 2 * time.Second
	defaultIdleSleep     = 100 * time.Millisecond
	defaultErrorSleep    = time.Second
	defaultDegradedSleep = 5 * time.Second
)

// ConsumerConfig configures the stream consumer.
type ConsumerConfig struct {
	// Stream is the event stream to consume (default llm_events).
	Stream string

	// Group is the consumer group name (default analytics_group).
	Group string

	// Consumer is this process's consumer name. Empty generates a fresh
	// one, so a restarted process claims a new name while the group
	// cursor persists broker-side.
	Consumer string

	// ClaimCount is the claim batch size (default 10).
	ClaimCount int

	// JoinAttempts bounds group-join retries (default 5).
	JoinAttempts int

	// JoinDelay is the fixed delay between join attempts (default 2s).
	JoinDelay time.Duration

	// IdleSleep is the pause after an empty claim (default 100ms).
	IdleSleep time.Duration

	// ErrorSleep is the pause after a non-connection error (default 1s).
	ErrorSleep time.Duration

	// DegradedSleep is the backoff after a connection failure (default 5s).
	DegradedSleep time.Duration
}

func (c *ConsumerConfig) applyDefaults() {
	if c.Stream == "" {
		c.Stream = DefaultStreamName
	}
	if c.Group == "" {
		c.Group = DefaultGroupName
	}
	if c.Consumer == "" {
		c.Consumer = "analytics-" + uuid.NewString()[:8]
	}
	if c.ClaimCount <= 0 {
		c.ClaimCount = defaultClaimCount
	}
	if c.JoinAttempts <= 0 {
		c.JoinAttempts = defaultJoinAttempts
	}
	if c.JoinDelay <= 0 {
		c.JoinDelay = defaultJoinDelay
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = defaultIdleSleep
	}
	if c.ErrorSleep <= 0 {
		c.ErrorSleep = defaultErrorSleep
	}
	if c.DegradedSleep <= 0 {
		c.DegradedSleep = defaultDegradedSleep
	}
}

// StreamConsumer is the long-lived analytics consumer. It joins a consumer
// group, claims undelivered entries, converts each into an analytics
// record, and acknowledges it. Entries are acknowledged whether or not the
// analytics write succeeded: the aggregation is idempotent on its key, so
// at-least-once delivery with overwrite-on-replay keeps analytics
// consistent without a stronger delivery guarantee.
//
// Lifecycle: Stopped -> Starting -> Running <-> Degraded -> Stopped.
// A connection failure while running degrades the consumer for a fixed
// backoff and returns it to the claim loop; group membership is assumed
// to persist broker-side.
type StreamConsumer struct {
	broker    driven.StreamBroker
	analytics driven.AnalyticsStore
	cfg       ConsumerConfig

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   domain.ConsumerStats
}

// NewStreamConsumer creates a stream consumer.
func NewStreamConsumer(broker driven.StreamBroker, analytics driven.AnalyticsStore, cfg ConsumerConfig) *StreamConsumer {
	cfg.applyDefaults()
	return &StreamConsumer{
		broker:    broker,
		analytics: analytics,
		cfg:       cfg,
		stats:     domain.ConsumerStats{State: domain.ConsumerStopped},
	}
}

// Start joins the consumer group and runs the claim loop until Stop is
// called or the context is cancelled. Exceeding the bounded join attempts
// returns the join error without ever entering the running state.
func (c *StreamConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return domain.ErrConsumerRunning
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.stats = domain.ConsumerStats{
		State:     domain.ConsumerStarting,
		StartedAt: time.Now().UTC(),
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.stats.State = domain.ConsumerStopped
		close(c.doneCh)
		c.mu.Unlock()
	}()

	if err := c.joinGroup(ctx); err != nil {
		return err
	}

	c.setState(domain.ConsumerRunning)
	logger.Info("consumer: %s consuming %s as %s", c.cfg.Group, c.cfg.Stream, c.cfg.Consumer)
	return c.run(ctx)
}

// Stop requests a cooperative shutdown and waits for the loop to exit.
// The loop observes the stop flag at the top of each claim iteration, so
// at most one in-flight claim/process/ack cycle completes after Stop.
func (c *StreamConsumer) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	done := c.doneCh
	c.mu.Unlock()

	<-done
	return nil
}

// Stats returns a snapshot of the process-lifetime counters.
func (c *StreamConsumer) Stats() domain.ConsumerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// joinGroup creates or joins the consumer group with bounded retries.
func (c *StreamConsumer) joinGroup(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.JoinAttempts; attempt++ {
		err := c.broker.EnsureGroup(ctx, c.cfg.Stream, c.cfg.Group)
		if err == nil {
			return nil
		}
		lastErr = err

		c.mu.Lock()
		c.stats.ConnectionErrors++
		c.stats.LastError = err.Error()
		c.mu.Unlock()

		logger.Warn("consumer: join attempt %d/%d: %v", attempt, c.cfg.JoinAttempts, err)
		if attempt < c.cfg.JoinAttempts && !c.sleep(ctx, c.cfg.JoinDelay) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("join group %s: %w", c.cfg.Group, lastErr)
}

// run is the claim loop.
func (c *StreamConsumer) run(ctx context.Context) error {
	for {
		select {
		case <-c.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := c.broker.Claim(ctx, c.cfg.Stream, c.cfg.Group, c.cfg.Consumer, c.cfg.ClaimCount)
		if err != nil {
			if errors.Is(err, domain.ErrBrokerUnavailable) {
				c.degrade(ctx, err)
				continue
			}
			c.recordError(err)
			if !c.sleep(ctx, c.cfg.ErrorSleep) {
				return ctx.Err()
			}
			continue
		}

		if len(entries) == 0 {
			if !c.sleep(ctx, c.cfg.IdleSleep) {
				return ctx.Err()
			}
			continue
		}

		for _, entry := range entries {
			c.process(ctx, entry)

			// Ack regardless of the processing outcome: a failed
			// analytics write is recoverable by the next matching
			// event, while an unacked entry would redeliver forever.
			if err := c.broker.Ack(ctx, c.cfg.Stream, c.cfg.Group, entry.ID); err != nil {
				c.recordError(fmt.Errorf("ack %s: %w", entry.ID, err))
			}
		}
	}
}

// process converts one claimed entry into an analytics record.
func (c *StreamConsumer) process(ctx context.Context, entry driven.StreamEntry) {
	event, err := domain.EventFromFields(entry.Fields)
	if err != nil {
		logger.Warn("consumer: skipping entry %s: %v", entry.ID, err)
		c.mu.Lock()
		c.stats.Skipped++
		c.mu.Unlock()
		return
	}

	rec := domain.RecordFromEvent(event)
	if err := c.analytics.Upsert(ctx, rec); err != nil {
		c.recordError(fmt.Errorf("upsert %s: %w", rec.Key, err))
		return
	}

	c.mu.Lock()
	c.stats.Processed++
	switch event.Kind {
	case domain.TaskSummarize:
		c.stats.Summaries++
	case domain.TaskQuestion:
		c.stats.Questions++
	}
	c.mu.Unlock()

	logger.Debug("consumer: processed %s (%s)", entry.ID, event.Kind)
}

// degrade backs off after a connection failure and returns to running.
func (c *StreamConsumer) degrade(ctx context.Context, err error) {
	c.mu.Lock()
	c.stats.ConnectionErrors++
	c.stats.LastError = err.Error()
	c.stats.State = domain.ConsumerDegraded
	c.mu.Unlock()

	logger.Warn("consumer: broker unavailable, backing off: %v", err)
	c.sleep(ctx, c.cfg.DegradedSleep)
	c.setState(domain.ConsumerRunning)
}

func (c *StreamConsumer) recordError(err error) {
	logger.Warn("consumer: %v", err)
	c.mu.Lock()
	c.stats.Errors++
	c.stats.LastError = err.Error()
	c.mu.Unlock()
}

func (c *StreamConsumer) setState(state domain.ConsumerState) {
	c.mu.Lock()
	c.stats.State = state
	c.mu.Unlock()
}

// sleep waits for d unless stopped or cancelled first. It returns false
// only on context cancellation.
func (c *StreamConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.stopCh:
		return true
	case <-ctx.Done():
		return false
	}
}
