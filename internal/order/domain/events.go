package domain

import (
	"context"
	"time"
)

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status_changed"
)

// OrderPlacedItem 订单行快照
type OrderPlacedItem struct {
	ProductID   uint64 `json:"product_id"`
	ProductCode string `json:"product_code,omitempty"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

// OrderPlacedEvent 订单创建事件
type OrderPlacedEvent struct {
	OrderUUID  string            `json:"order_uuid"`
	UserID     string            `json:"user_id"`
	StoreCode  string            `json:"store_code"`
	CartUUID   string            `json:"cart_uuid"`
	Items      []OrderPlacedItem `json:"items"`
	TotalPrice string            `json:"total_price"`
	OccurredOn time.Time         `json:"occurred_on"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderUUID  string      `json:"order_uuid"`
	Event      OrderEvent  `json:"event"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ActorID    string      `json:"actor_id,omitempty"`
	OccurredOn time.Time   `json:"occurred_on"`
}

// EventPublisher 事件发布者接口；ctx 中存在事务时随事务写入
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
