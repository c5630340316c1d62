// Package redis provides a stream broker adapter backed by Redis Streams.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure StreamBroker implements the interface.
var _ driven.StreamBroker = (*StreamBroker)(nil)

// StreamBroker implements driven.StreamBroker on Redis Streams using
// consumer groups (XADD / XGROUP / XREADGROUP / XACK).
type StreamBroker struct {
	client *goredis.Client
}

// NewStreamBroker creates a stream broker on an existing client.
func NewStreamBroker(client *goredis.Client) *StreamBroker {
	return &StreamBroker{client: client}
}

// Append adds an entry to the stream and returns the assigned ID.
func (b *StreamBroker) Append(ctx context.Context, stream string, fields map[string]any) (string, error) {
	id, err := b.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", connErr("append to "+stream, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group if it does not exist yet, creating
// the stream as a side effect. An already-existing group is not an error.
func (b *StreamBroker) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return connErr("create group "+group, err)
	}
	return nil
}

// Claim reads up to count new entries for the consumer without blocking.
// An empty stream yields a nil slice and no error.
func (b *StreamBroker) Claim(ctx context.Context, stream, group, consumer string, count int) ([]driven.StreamEntry, error) {
	streams, err := b.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    int64(count),
		Block:    -1,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, connErr("claim from "+stream, err)
	}

	var entries []driven.StreamEntry
	for _, s := range streams {
		for _, msg := range s.Messages {
			fields := make(map[string]string, len(msg.Values))
			for k, v := range msg.Values {
				fields[k] = fmt.Sprintf("%v", v)
			}
			entries = append(entries, driven.StreamEntry{ID: msg.ID, Fields: fields})
		}
	}
	return entries, nil
}

// Ack acknowledges an entry for the group.
func (b *StreamBroker) Ack(ctx context.Context, stream, group, id string) error {
	if err := b.client.XAck(ctx, stream, group, id).Err(); err != nil {
		return connErr("ack "+id, err)
	}
	return nil
}

// connErr wraps a Redis failure as a broker connectivity error so callers
// can distinguish it from payload-level problems.
func connErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBrokerUnavailable, err)
}
