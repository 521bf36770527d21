package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) (*RedisLog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLog(rdb, time.Hour), mr
}

func TestRedisLog_MarkThenSeen(t *testing.T) {
	log, mr := newTestLog(t)
	ctx := context.Background()

	seen, err := log.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, log.Mark(ctx, "evt_1"))

	seen, err = log.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = log.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"evt_1"))
}

func TestRedisLog_Expires(t *testing.T) {
	log, mr := newTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Mark(ctx, "evt_1"))
	mr.FastForward(2 * time.Hour)

	seen, err := log.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisLog_Unavailable(t *testing.T) {
	log, mr := newTestLog(t)
	mr.Close()

	_, err := log.Seen(context.Background(), "evt_1")
	assert.Error(t, err)
	assert.Error(t, log.Mark(context.Background(), "evt_1"))
}
