package domain

import (
	"context"
	"time"
)

const (
	TopicCartCreated   = "cart.created"
	TopicCartItemAdded = "cart.item_added"
)

// CartCreatedEvent 购物车创建事件
type CartCreatedEvent struct {
	CartUUID  string    `json:"cart_uuid"`
	StoreCode string    `json:"store_code"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	CartUUID           string    `json:"cart_uuid"`
	StoreCode          string    `json:"store_code"`
	ProductInStoreUUID string    `json:"product_in_store_uuid"`
	Quantity           int       `json:"quantity"`
	Timestamp          time.Time `json:"timestamp"`
}

// EventPublisher 领域事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
