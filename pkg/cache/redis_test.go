package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedOrder struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}

func TestRedisCache_JSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	var got cachedOrder
	found, err := rc.GetJSON(ctx, "order:o-1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.SetJSON(ctx, "order:o-1", cachedOrder{UUID: "o-1", Status: "placed"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("order:o-1"))

	found, err = rc.GetJSON(ctx, "order:o-1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedOrder{UUID: "o-1", Status: "placed"}, got)

	require.NoError(t, rc.Delete(ctx, "order:o-1", "order:missing"))
	assert.False(t, mr.Exists("order:o-1"))
	require.NoError(t, rc.Delete(ctx))
}

func TestRedisCache_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, mr.Set("order:bad", "{not json"))

	var got cachedOrder
	_, err := rc.GetJSON(context.Background(), "order:bad", &got)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	port := mustPort(t, mr)
	rc, err := New(Config{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	assert.NoError(t, rc.Close())

	mr.Close()
	_, err = New(Config{Host: "127.0.0.1", Port: port})
	assert.Error(t, err)
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
