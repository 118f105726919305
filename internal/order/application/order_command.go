package application

import (
	"context"
	"time"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/metrics"
)

// 条件更新失败后重新读取订单并重试的次数上限
const maxTransitionAttempts = 3

// OrderCommandService 处理订单状态迁移
type OrderCommandService struct {
	repo      domain.OrderRepository
	cache     domain.OrderCache
	publisher domain.EventPublisher
	tx        db.Transactor
	metrics   *metrics.Metrics
}

// NewOrderCommandService 创建新的 OrderCommandService 实例
func NewOrderCommandService(
	repo domain.OrderRepository,
	cache domain.OrderCache,
	publisher domain.EventPublisher,
	tx db.Transactor,
	m *metrics.Metrics,
) *OrderCommandService {
	return &OrderCommandService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		tx:        tx,
		metrics:   m,
	}
}

// AcceptOrder placed → accepted
func (c *OrderCommandService) AcceptOrder(ctx context.Context, orderUUID, actorID string) (*domain.Order, error) {
	return c.Transition(ctx, orderUUID, domain.EventAccept, actorID)
}

// ShipOrder accepted → shipped
func (c *OrderCommandService) ShipOrder(ctx context.Context, orderUUID, actorID string) (*domain.Order, error) {
	return c.Transition(ctx, orderUUID, domain.EventShip, actorID)
}

// DeliverOrder shipped → delivered
func (c *OrderCommandService) DeliverOrder(ctx context.Context, orderUUID, actorID string) (*domain.Order, error) {
	return c.Transition(ctx, orderUUID, domain.EventDeliver, actorID)
}

// CloseOrder delivered → closed
func (c *OrderCommandService) CloseOrder(ctx context.Context, orderUUID, actorID string) (*domain.Order, error) {
	return c.Transition(ctx, orderUUID, domain.EventClose, actorID)
}

// CancelOrder placed/accepted/shipped → cancelled
func (c *OrderCommandService) CancelOrder(ctx context.Context, orderUUID, actorID string) (*domain.Order, error) {
	return c.Transition(ctx, orderUUID, domain.EventCancel, actorID)
}

// Transition 对订单应用事件并持久化。
// 写入使用 status 条件更新；并发请求抢先修改时在新事务中重新读取并按新状态重新校验，
// 因此落败方得到的是基于胜出方状态的迁移错误。
func (c *OrderCommandService) Transition(ctx context.Context, orderUUID string, event domain.OrderEvent, actorID string) (*domain.Order, error) {
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		order, applied, err := c.tryTransition(ctx, orderUUID, event, actorID)
		if err != nil {
			c.observe(event, err)
			return nil, bizerr.Wrap(err)
		}
		if applied {
			c.observe(event, nil)
			if err := c.cache.Delete(ctx, orderUUID); err != nil {
				logger.Warn(ctx, "Failed to invalidate order cache", "order_uuid", orderUUID, "error", err)
			}
			logger.Info(ctx, "Order status changed",
				"order_uuid", orderUUID,
				"event", event,
				"status", order.Status,
				"actor_id", actorID,
			)
			return order, nil
		}
		logger.Debug(ctx, "Order status changed concurrently, retrying", "order_uuid", orderUUID, "attempt", attempt)
	}

	err := bizerr.Business("order_busy", "Order "+orderUUID+" is being updated, please retry")
	c.observe(event, err)
	return nil, err
}

func (c *OrderCommandService) tryTransition(ctx context.Context, orderUUID string, event domain.OrderEvent, actorID string) (*domain.Order, bool, error) {
	var (
		order   *domain.Order
		applied bool
	)
	err := c.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = c.repo.Get(txCtx, orderUUID)
		if err != nil {
			return err
		}
		if order == nil {
			return bizerr.NotFound("order_not_found", "Order %s does not exist", orderUUID)
		}

		from := order.Status
		if err := order.ApplyEvent(event); err != nil {
			return err
		}

		applied, err = c.repo.CompareAndSetStatus(txCtx, orderUUID, from, order.Status, order.UpdatedAt)
		if err != nil || !applied {
			return err
		}

		return c.publisher.Publish(txCtx, domain.TopicOrderStatusChanged, orderUUID, domain.OrderStatusChangedEvent{
			OrderUUID:  orderUUID,
			Event:      event,
			From:       from,
			To:         order.Status,
			ActorID:    actorID,
			OccurredOn: time.Now(),
		})
	})
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}

func (c *OrderCommandService) observe(event domain.OrderEvent, err error) {
	result := "applied"
	if err != nil {
		switch {
		case IsTransitionRejected(err):
			result = "rejected"
		case bizerr.KindOf(err) == bizerr.KindNotFound:
			result = "not_found"
		case bizerr.KindOf(err) == bizerr.KindBusiness:
			result = "conflict"
		default:
			result = "error"
		}
	}
	if c.metrics == nil {
		return
	}
	c.metrics.OrderTransitions.WithLabelValues(string(event), result).Inc()
}
