package driven

import "context"

// StreamEntry is one claimed entry from the event stream. The ID is
// broker-assigned and monotonically increasing within a stream.
type StreamEntry struct {
	// ID is the broker-assigned entry identifier.
	ID string

	// Fields is the flat string payload of the entry.
	Fields map[string]string
}

// StreamBroker is the append-only event log with consumer-group semantics.
// Connection-level failures are reported wrapped in
// domain.ErrBrokerUnavailable so callers can distinguish them from payload
// errors and back off.
type StreamBroker interface {
	// Append adds an entry to the stream and returns its assigned ID.
	Append(ctx context.Context, stream string, fields map[string]any) (string, error)

	// EnsureGroup creates the consumer group on the stream if it does not
	// already exist. Creating an existing group is not an error.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Claim reads up to count undelivered entries for the named consumer.
	// An empty result means the stream is idle.
	Claim(ctx context.Context, stream, group, consumer string, count int) ([]StreamEntry, error)

	// Ack acknowledges a claimed entry so it is not redelivered.
	Ack(ctx context.Context, stream, group, id string) error
}
