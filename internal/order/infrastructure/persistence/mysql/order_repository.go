// Package mysql 提供了订单仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"gorm.io/gorm"
)

// orderRepositoryImpl 是 domain.OrderRepository 接口的 GORM 实现。
type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(gdb *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: gdb}
}

// Create 实现 domain.OrderRepository.Create
func (r *orderRepositoryImpl) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		logger.Error(ctx, "order_repository.create failed", "order_uuid", order.UUID, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = model.ID
	for i, item := range order.Items {
		item.ID = model.Items[i].ID
		item.OrderID = model.ID
	}
	return nil
}

// Get 实现 domain.OrderRepository.Get
func (r *orderRepositoryImpl) Get(ctx context.Context, uuid string) (*domain.Order, error) {
	var m OrderModel
	err := r.withRefs(db.Conn(ctx, r.db)).Where("uuid = ?", uuid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrder(&m), nil
}

// CompareAndSetStatus 条件更新，并发迁移时只有一个请求能匹配到旧状态
func (r *orderRepositoryImpl) CompareAndSetStatus(ctx context.Context, uuid string, from, to domain.OrderStatus, updatedAt time.Time) (bool, error) {
	res := db.Conn(ctx, r.db).Model(&OrderModel{}).
		Where("uuid = ? AND status = ?", uuid, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		logger.Error(ctx, "order_repository.cas_status failed", "order_uuid", uuid, "error", res.Error)
		return false, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// List 实现 domain.OrderRepository.List
func (r *orderRepositoryImpl) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	// 按店铺编码排序，需要关联 stores
	q := r.withRefs(db.Conn(ctx, r.db)).
		Select("orders.*").
		Joins("JOIN stores ON stores.id = orders.store_id")
	if filter.UserID != "" {
		q = q.Where("orders.user_id = ?", filter.UserID)
	}
	if filter.StoreID != 0 {
		q = q.Where("orders.store_id = ?", filter.StoreID)
	}

	var models []OrderModel
	err := q.Order("stores.code ASC").
		Order("orders.created_at DESC").
		Order("orders.updated_at DESC").
		Order("orders.id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrder(&models[i]))
	}
	return orders, nil
}

func (r *orderRepositoryImpl) withRefs(q *gorm.DB) *gorm.DB {
	return q.Preload("Store").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Items.Product")
}
