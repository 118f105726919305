package messaging

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

// outboxPublisher 基于 Outbox 模式的事件发布者实现
type outboxPublisher struct {
	manager *outbox.Manager
}

// NewOutboxPublisher 创建一个新的 OutboxPublisher 实例
func NewOutboxPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &outboxPublisher{manager: manager}
}

// Publish 写入发件箱；ctx 携带事务时与业务数据一同提交
func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.manager.Publish(ctx, topic, key, event)
}
