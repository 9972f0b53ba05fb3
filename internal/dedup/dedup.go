// Package dedup remembers provider event IDs so redelivered events can be
// acknowledged without repeating non-idempotent side effects. The provider
// offers no exactly-once guarantee, so this is a best-effort shield, not a
// durability layer.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an event ID stays marked as seen. Providers stop
// redelivering well inside a day.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "webhook:event:"

// Deduper records event IDs and reports repeats.
type Deduper interface {
	// Seen marks id as handled and reports whether it had been seen before.
	Seen(ctx context.Context, id string) (bool, error)
}

// NoOp treats every event as new. Used when redis is disabled or
// unavailable; the pipeline then processes each delivery independently.
type NoOp struct{}

func (NoOp) Seen(ctx context.Context, id string) (bool, error) {
	return false, nil
}

// RedisDeduper implements Deduper with SET NX and a TTL.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper connects to url and verifies the connection with a ping.
// ttl <= 0 selects DefaultTTL.
func NewRedisDeduper(url string, ttl time.Duration) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}, nil
}

// Seen reports whether id was already recorded, recording it atomically when
// it was not. Events without an id are never treated as duplicates.
func (d *RedisDeduper) Seen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	stored, err := d.client.SetNX(ctx, keyPrefix+id, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record event id: %w", err)
	}
	return !stored, nil
}

// Close releases the redis connection.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
