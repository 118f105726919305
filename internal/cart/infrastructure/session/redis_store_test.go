package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, ttl)
}

func TestRedisSession_PointerPerStore(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t, time.Hour)
	sess := store.Open("s-1")

	_, ok, err := sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sess.SetCart(ctx, "corner", "c-1"))
	require.NoError(t, sess.SetCart(ctx, "market", "c-2"))
	require.NoError(t, sess.SetCart(ctx, "corner", "c-3"))

	got, ok, err := sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c-3", got)
	assert.Equal(t, time.Hour, mr.TTL("session:s-1"))

	require.NoError(t, sess.ClearCart(ctx, "corner"))
	_, ok, err = sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, _ = sess.CartFor(ctx, "market")
	assert.True(t, ok)
	assert.Equal(t, "c-2", got)
}

func TestRedisSession_Isolation(t *testing.T) {
	ctx := context.Background()
	_, store := newStore(t, 0)

	require.NoError(t, store.Open("a").SetCart(ctx, "corner", "c-a"))
	_, ok, err := store.Open("b").CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSession_Expires(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t, time.Minute)
	sess := store.Open("s-2")
	require.NoError(t, sess.SetCart(ctx, "corner", "c-1"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, store := newStore(t, 0)
	ctx := WithSession(context.Background(), store.Open("x"))
	sess, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, sess)
}
