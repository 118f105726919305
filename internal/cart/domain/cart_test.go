package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Lines(t *testing.T) {
	cart := NewCart("c-1", 1)
	assert.True(t, cart.IsEmpty())

	cart.Items = []*CartItem{
		{UUID: "i-1", ProductInStoreID: 10, Quantity: 2},
		{UUID: "i-2", ProductInStoreID: 20, Quantity: 1},
	}

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, 2, cart.QuantityOf(10))
	assert.Equal(t, 1, cart.QuantityOf(20))
	assert.Equal(t, 0, cart.QuantityOf(30))
	assert.Equal(t, []uint64{10, 20}, cart.ProductInStoreIDs())
}

func TestMapSession(t *testing.T) {
	ctx := context.Background()
	sess := MapSession{}

	_, ok, err := sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sess.SetCart(ctx, "corner", "c-1"))
	require.NoError(t, sess.SetCart(ctx, "market", "c-2"))

	got, ok, err := sess.CartFor(ctx, "corner")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c-1", got)

	require.NoError(t, sess.ClearCart(ctx, "corner"))
	_, ok, _ = sess.CartFor(ctx, "corner")
	assert.False(t, ok)

	got, ok, _ = sess.CartFor(ctx, "market")
	assert.True(t, ok)
	assert.Equal(t, "c-2", got)
}
