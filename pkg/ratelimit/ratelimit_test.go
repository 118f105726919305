package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectKey(t *testing.T) {
	assert.Equal(t, "user:alice", SubjectKey("alice", "10.0.0.1"))
	assert.Equal(t, "ip:10.0.0.1", SubjectKey("", "10.0.0.1"))
}

func TestRedisLimiter_Burst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLimiter(client)
	ctx := context.Background()
	limit := PerSecond(1, 3)

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "user:alice", limit, 1)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
	}
	d, err := limiter.Allow(ctx, "user:alice", limit, 1)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Positive(t, d.RetryAfter)

	// 其他调用方不受影响
	d, err = limiter.Allow(ctx, "user:bob", limit, 1)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
