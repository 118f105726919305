// Package persistence 组合数据库与缓存的订单仓储
package persistence

import (
	"context"
	"time"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

type compositeOrderRepository struct {
	store domain.OrderRepository
	cache domain.OrderCache
}

// NewCompositeOrderRepository 读路径先查缓存，事务内始终读数据库
func NewCompositeOrderRepository(store domain.OrderRepository, cache domain.OrderCache) domain.OrderRepository {
	return &compositeOrderRepository{store: store, cache: cache}
}

func (r *compositeOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.store.Create(ctx, order)
}

func (r *compositeOrderRepository) Get(ctx context.Context, uuid string) (*domain.Order, error) {
	if _, inTx := db.TxFromContext(ctx); inTx {
		return r.store.Get(ctx, uuid)
	}

	if order, err := r.cache.Get(ctx, uuid); err != nil {
		logger.Warn(ctx, "Order cache read failed", "order_uuid", uuid, "error", err)
	} else if order != nil {
		return order, nil
	}

	order, err := r.store.Get(ctx, uuid)
	if err != nil || order == nil {
		return order, err
	}
	if err := r.cache.Set(ctx, order); err != nil {
		logger.Warn(ctx, "Order cache write failed", "order_uuid", uuid, "error", err)
	}
	return order, nil
}

func (r *compositeOrderRepository) CompareAndSetStatus(ctx context.Context, uuid string, from, to domain.OrderStatus, updatedAt time.Time) (bool, error) {
	return r.store.CompareAndSetStatus(ctx, uuid, from, to, updatedAt)
}

func (r *compositeOrderRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	return r.store.List(ctx, filter)
}
