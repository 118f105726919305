package messaging

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/cart/domain"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

type outboxPublisher struct {
	manager *outbox.Manager
}

// NewOutboxPublisher 创建购物车事件发布者
func NewOutboxPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &outboxPublisher{manager: manager}
}

func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.manager.Publish(ctx, topic, key, event)
}
