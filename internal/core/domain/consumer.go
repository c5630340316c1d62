package domain

import "time"

// ConsumerState is the lifecycle state of the stream consumer.
type ConsumerState string

const (
	// ConsumerStopped means the consumer is not running.
	ConsumerStopped ConsumerState = "stopped"

	// ConsumerStarting means the consumer is joining its consumer group.
	ConsumerStarting ConsumerState = "starting"

	// ConsumerRunning means the consumer is claiming and processing entries.
	ConsumerRunning ConsumerState = "running"

	// ConsumerDegraded means the broker connection failed and the consumer
	// is backing off before re-entering the claim loop.
	ConsumerDegraded ConsumerState = "degraded"
)

// ConsumerStats holds process-lifetime counters for the stream consumer.
// They reset only on process restart and are never persisted.
type ConsumerStats struct {
	// State is the current lifecycle state.
	State ConsumerState

	// Processed counts entries processed and acknowledged.
	Processed uint64

	// Summaries and Questions count processed entries by kind.
	Summaries uint64
	Questions uint64

	// Skipped counts entries with unknown or malformed payloads.
	Skipped uint64

	// Errors counts analytics write and acknowledgment failures.
	Errors uint64

	// ConnectionErrors counts broker connection failures.
	ConnectionErrors uint64

	// LastError is the most recent error message, if any.
	LastError string

	// StartedAt is when the current run began.
	StartedAt time.Time
}
