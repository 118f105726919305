package domain

import (
	"context"
	"time"
)

// ListFilter 订单列表过滤条件
type ListFilter struct {
	UserID  string
	StoreID uint64
}

// OrderRepository 订单仓储接口，未找到时返回 (nil, nil)
type OrderRepository interface {
	// Create 写入订单及订单行
	Create(ctx context.Context, order *Order) error
	// Get 根据 uuid 获取订单及订单行
	Get(ctx context.Context, uuid string) (*Order, error)
	// CompareAndSetStatus 仅当当前状态为 from 时更新为 to，返回是否更新成功
	CompareAndSetStatus(ctx context.Context, uuid string, from, to OrderStatus, updatedAt time.Time) (bool, error)
	// List 按店铺、创建时间倒序、更新时间倒序返回订单
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
}

// OrderCache 订单读缓存
type OrderCache interface {
	Get(ctx context.Context, uuid string) (*Order, error)
	Set(ctx context.Context, order *Order) error
	Delete(ctx context.Context, uuid string) error
}
