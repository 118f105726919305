package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/metrics"
)

// Producer 消息队列生产者，pkg/mq.KafkaProducer 满足该接口
type Producer interface {
	SendMessage(ctx context.Context, topic string, key string, value any) error
}

// RelayConfig 投递参数
type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
	Retention time.Duration
}

// Relay 轮询发件箱并投递
type Relay struct {
	manager  *Manager
	producer Producer
	metrics  *metrics.Metrics
	cfg      RelayConfig
}

// NewRelay 创建 Relay；metrics 可为 nil
func NewRelay(manager *Manager, producer Producer, m *metrics.Metrics, cfg RelayConfig) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{manager: manager, producer: producer, metrics: m, cfg: cfg}
}

// Run 周期性投递直到 ctx 结束
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	cleanupEvery := time.Hour
	lastCleanup := time.Now()

	logger.Info(ctx, "Outbox relay started", "interval", r.cfg.Interval, "batch_size", r.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				logger.Error(ctx, "Outbox relay round failed", "error", err)
			}
			if r.cfg.Retention > 0 && time.Since(lastCleanup) >= cleanupEvery {
				if _, err := r.Cleanup(ctx, time.Now().Add(-r.cfg.Retention)); err != nil {
					logger.Error(ctx, "Outbox cleanup failed", "error", err)
				}
				lastCleanup = time.Now()
			}
		}
	}
}

// RelayOnce 投递一批待发送消息，返回成功投递的条数；单条失败不阻塞同批其它 key 的消息
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	msgs, err := r.manager.Pending(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	// 同一 key 前一条失败时跳过其后续消息，保持单个聚合内的事件顺序
	blocked := make(map[string]bool)
	for _, msg := range msgs {
		if blocked[msg.Key] {
			continue
		}
		if err := r.producer.SendMessage(ctx, msg.Topic, msg.Key, json.RawMessage(msg.Payload)); err != nil {
			blocked[msg.Key] = true
			r.observe("failed")
			r.markFailed(ctx, msg, err)
			continue
		}
		if err := r.markSent(ctx, msg); err != nil {
			return sent, err
		}
		r.observe("sent")
		sent++
	}
	return sent, nil
}

// Cleanup 删除早于 before 的已发送消息
func (r *Relay) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	res := r.manager.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", StatusSent, before).
		Delete(&Message{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		logger.Info(ctx, "Outbox messages purged", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func (r *Relay) markSent(ctx context.Context, msg *Message) error {
	now := time.Now()
	return r.manager.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", msg.ID).
		Updates(map[string]any{
			"status":   StatusSent,
			"sent_at":  now,
			"attempts": msg.Attempts + 1,
		}).Error
}

func (r *Relay) markFailed(ctx context.Context, msg *Message, cause error) {
	errMsg := cause.Error()
	if len(errMsg) > 512 {
		errMsg = errMsg[:512]
	}
	err := r.manager.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", msg.ID).
		Updates(map[string]any{
			"attempts":   msg.Attempts + 1,
			"last_error": errMsg,
		}).Error
	if err != nil {
		logger.Error(ctx, "Failed to record outbox failure", "id", msg.ID, "error", err)
	}
}

func (r *Relay) observe(result string) {
	if r.metrics != nil {
		r.metrics.OutboxDelivered.WithLabelValues(result).Inc()
	}
}
