package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "techservice:test"

func newLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	l := New(client, limit, window, prefix)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestAllow_DeniesOverLimit(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLimiter(t, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "user:5")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "user:5")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "user:6")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")
}

func TestAllow_WindowRollover(t *testing.T) {
	ctx := context.Background()
	l, _, now := newLimiter(t, 1, time.Minute)

	ok, err := l.Allow(ctx, "user:5")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "user:5")
	require.NoError(t, err)
	require.False(t, ok)

	*now = now.Add(time.Minute)

	ok, err = l.Allow(ctx, "user:5")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts from zero")
}

func TestAllow_KeyExpires(t *testing.T) {
	ctx := context.Background()
	l, mr, now := newLimiter(t, 5, time.Minute)

	_, err := l.Allow(ctx, "user:5")
	require.NoError(t, err)

	key := fmt.Sprintf("%s:user:5:%d", prefix, now.UnixNano()/int64(time.Minute))
	require.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(key))
}

func TestAllow_RedisDown(t *testing.T) {
	l, mr, _ := newLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "user:5")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, "", "", 0)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := NewClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(ctx, addr, "", 0)
	assert.Error(t, err)
}
