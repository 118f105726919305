package domain

import (
	"context"
	"time"
)

const (
	TopicStoreCreated   = "catalog.store_created"
	TopicProductCreated = "catalog.product_created"
	TopicProductListed  = "catalog.product_listed"
)

// StoreCreatedEvent 店铺创建事件
type StoreCreatedEvent struct {
	StoreID   uint64    `json:"store_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID uint64    `json:"product_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductListedEvent 商品上架事件
type ProductListedEvent struct {
	UUID      string    `json:"uuid"`
	StoreCode string    `json:"store_code"`
	Product   string    `json:"product_code"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 领域事件发布者；ctx 中存在事务时随事务写入
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
