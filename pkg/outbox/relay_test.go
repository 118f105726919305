package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/metrics"
)

type sent struct {
	topic string
	key   string
	value string
}

type fakeProducer struct {
	mu     sync.Mutex
	failOn map[string]bool
	sent   []sent
}

func (p *fakeProducer) SendMessage(_ context.Context, topic, key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn[key] {
		return errors.New("broker unavailable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	p.sent = append(p.sent, sent{topic: topic, key: key, value: string(raw)})
	return nil
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	_, m := newDB(t)
	return m
}

func newDB(t *testing.T) (*db.DB, *Manager) {
	t.Helper()
	database, err := db.Init(db.Config{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, AutoMigrate(database.DB))
	return database, NewManager(database.DB)
}

func TestPublish_FollowsTransaction(t *testing.T) {
	tx, m := newDB(t)
	ctx := context.Background()

	err := tx.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, m.Publish(txCtx, "order.placed", "o-1", map[string]string{"order_uuid": "o-1"}))
		return errors.New("boom")
	})
	require.Error(t, err)

	pending, err := m.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "rolled back transaction leaves no message")

	require.NoError(t, tx.WithTx(ctx, func(txCtx context.Context) error {
		return m.Publish(txCtx, "order.placed", "o-1", map[string]string{"order_uuid": "o-1"})
	}))
	pending, err = m.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, StatusPending, pending[0].Status)
	assert.JSONEq(t, `{"order_uuid":"o-1"}`, pending[0].Payload)
}

func TestRelayOnce_DeliversInOrder(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Publish(ctx, "order.status_changed", "o-1", map[string]int{"seq": i}))
	}

	producer := &fakeProducer{}
	met := metrics.New("outbox-test")
	relay := NewRelay(m, producer, met, RelayConfig{})

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, producer.sent, 3)
	for i, s := range producer.sent {
		assert.Equal(t, "order.status_changed", s.topic)
		assert.JSONEq(t, fmt.Sprintf(`{"seq":%d}`, i+1), s.value)
	}
	assert.Equal(t, float64(3), testutil.ToFloat64(met.OutboxDelivered.WithLabelValues("sent")))

	pending, err := m.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelayOnce_FailureBlocksOnlyThatKey(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	require.NoError(t, m.Publish(ctx, "order.placed", "bad", map[string]int{"seq": 1}))
	require.NoError(t, m.Publish(ctx, "order.placed", "good", map[string]int{"seq": 2}))
	require.NoError(t, m.Publish(ctx, "order.status_changed", "bad", map[string]int{"seq": 3}))

	producer := &fakeProducer{failOn: map[string]bool{"bad": true}}
	relay := NewRelay(m, producer, nil, RelayConfig{})

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, producer.sent, 1)
	assert.Equal(t, "good", producer.sent[0].key)

	pending, err := m.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "broker unavailable", pending[0].LastError)
	assert.Equal(t, 0, pending[1].Attempts, "later message for the failing key is not attempted")

	producer.failOn = nil
	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCleanup(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	require.NoError(t, m.Publish(ctx, "cart.created", "c-1", map[string]string{}))
	require.NoError(t, m.Publish(ctx, "cart.created", "c-2", map[string]string{}))

	relay := NewRelay(m, &fakeProducer{}, nil, RelayConfig{})
	_, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Publish(ctx, "cart.created", "c-3", map[string]string{}))

	removed, err := relay.Cleanup(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var left int64
	require.NoError(t, m.DB().Model(&Message{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestRelayRun_StopsWithContext(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Publish(context.Background(), "order.placed", "o-9", map[string]string{}))
	producer := &fakeProducer{}
	relay := NewRelay(m, producer, nil, RelayConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool {
		producer.mu.Lock()
		defer producer.mu.Unlock()
		return len(producer.sent) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
