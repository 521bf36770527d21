// Package dedup records which payment notifications were already applied.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"foodorder/internal/service"
)

const (
	keyPrefix  = "webhook:event:"
	DefaultTTL = 72 * time.Hour
)

// RedisLog is a service.DeliveryLog backed by Redis keys with a TTL. The ledger
// stays authoritative; the log only short-circuits repeated deliveries.
type RedisLog struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ service.DeliveryLog = (*RedisLog)(nil)

func NewRedisLog(rdb redis.Cmdable, ttl time.Duration) *RedisLog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLog{rdb: rdb, ttl: ttl}
}

func (l *RedisLog) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLog) Mark(ctx context.Context, eventID string) error {
	if err := l.rdb.Set(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
