package messaging

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式
type OutboxEventPublisher struct {
	manager *outbox.Manager
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &OutboxEventPublisher{manager: manager}
}

// Publish 写入发件箱，与订单数据在同一事务内提交
func (p *OutboxEventPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.manager.Publish(ctx, topic, key, event)
}
