package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure StreamBroker implements the interface.
var _ driven.StreamBroker = (*StreamBroker)(nil)

// StreamBroker is an in-memory implementation of driven.StreamBroker with
// single-cursor consumer-group semantics: Claim hands out entries past the
// group cursor in append order, Ack marks them delivered. Rewind resets a
// group's cursor so tests can simulate redelivery.
type StreamBroker struct {
	mu      sync.Mutex
	seq     int
	streams map[string][]driven.StreamEntry
	cursors map[string]int
	acked   map[string]map[string]bool

	// failUntil makes the next n broker calls fail with
	// domain.ErrBrokerUnavailable, for degraded-path tests.
	failUntil int
}

// NewStreamBroker creates a new in-memory stream broker.
func NewStreamBroker() *StreamBroker {
	return &StreamBroker{
		streams: make(map[string][]driven.StreamEntry),
		cursors: make(map[string]int),
		acked:   make(map[string]map[string]bool),
	}
}

// FailNext makes the next n broker operations report a connection failure.
func (b *StreamBroker) FailNext(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failUntil = n
}

func (b *StreamBroker) failing() bool {
	if b.failUntil > 0 {
		b.failUntil--
		return true
	}
	return false
}

// Append adds an entry to the stream and returns its monotonic ID.
func (b *StreamBroker) Append(_ context.Context, stream string, fields map[string]any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing() {
		return "", fmt.Errorf("append: %w", domain.ErrBrokerUnavailable)
	}

	b.seq++
	id := fmt.Sprintf("%d-0", b.seq)

	flat := make(map[string]string, len(fields))
	for k, v := range fields {
		flat[k] = fmt.Sprintf("%v", v)
	}

	b.streams[stream] = append(b.streams[stream], driven.StreamEntry{ID: id, Fields: flat})
	return id, nil
}

// EnsureGroup initialises the group cursor if absent.
func (b *StreamBroker) EnsureGroup(_ context.Context, stream, group string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing() {
		return fmt.Errorf("ensure group: %w", domain.ErrBrokerUnavailable)
	}

	key := stream + "|" + group
	if _, ok := b.cursors[key]; !ok {
		b.cursors[key] = 0
		b.acked[key] = make(map[string]bool)
	}
	return nil
}

// Claim reads up to count undelivered entries past the group cursor.
func (b *StreamBroker) Claim(_ context.Context, stream, group, _ string, count int) ([]driven.StreamEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing() {
		return nil, fmt.Errorf("claim: %w", domain.ErrBrokerUnavailable)
	}

	key := stream + "|" + group
	entries := b.streams[stream]
	cursor := b.cursors[key]

	var claimed []driven.StreamEntry
	for cursor < len(entries) && len(claimed) < count {
		claimed = append(claimed, entries[cursor])
		cursor++
	}
	b.cursors[key] = cursor
	return claimed, nil
}

// Ack marks an entry delivered for the group.
func (b *StreamBroker) Ack(_ context.Context, stream, group, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing() {
		return fmt.Errorf("ack: %w", domain.ErrBrokerUnavailable)
	}

	key := stream + "|" + group
	if b.acked[key] == nil {
		b.acked[key] = make(map[string]bool)
	}
	b.acked[key][id] = true
	return nil
}

// Acked reports whether an entry has been acknowledged by the group.
func (b *StreamBroker) Acked(stream, group, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acked[stream+"|"+group][id]
}

// Rewind resets the group cursor to the start of the stream, simulating
// redelivery of every entry.
func (b *StreamBroker) Rewind(stream, group string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursors[stream+"|"+group] = 0
}

// Len returns the number of entries in a stream.
func (b *StreamBroker) Len(stream string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams[stream])
}
