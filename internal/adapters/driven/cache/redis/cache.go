// Package redis provides a cache store adapter backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the host:port of the Redis server (default localhost:6379).
	Addr string

	// Password is the optional server password.
	Password string

	// DB is the database number.
	DB int
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// CacheStore implements driven.CacheStore on a Redis client.
type CacheStore struct {
	client *goredis.Client
}

// NewCacheStore creates a cache store on an existing client.
func NewCacheStore(client *goredis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Get returns the value stored under key, or domain.ErrNotFound on a miss.
func (s *CacheStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key. A zero ttl means no expiry.
func (s *CacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Keys returns all keys beginning with prefix.
func (s *CacheStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("cache keys %s: %w", prefix, err)
	}
	return keys, nil
}
