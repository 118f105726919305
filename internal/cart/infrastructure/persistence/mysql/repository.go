// Package mysql 提供购物车仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wyfcoding/shopfront/internal/cart/domain"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储
func NewCartRepository(gdb *gorm.DB) domain.CartRepository {
	return &cartRepository{db: gdb}
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	model := &CartModel{UUID: cart.UUID, StoreID: cart.StoreID}
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		logger.Error(ctx, "cart_repository.create failed", "cart_uuid", cart.UUID, "error", err)
		return fmt.Errorf("failed to create cart: %w", err)
	}
	cart.ID = model.ID
	cart.CreatedAt = model.CreatedAt
	return nil
}

func (r *cartRepository) GetInStore(ctx context.Context, storeID uint64, cartUUID string) (*domain.Cart, error) {
	var m CartModel
	err := db.Conn(ctx, r.db).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("uuid = ? AND store_id = ?", cartUUID, storeID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return toCart(&m), nil
}

func (r *cartRepository) IncrementItem(ctx context.Context, cartID, productInStoreID uint64) (*domain.CartItem, error) {
	conn := db.Conn(ctx, r.db)
	model := &CartItemModel{
		UUID:             uuid.NewString(),
		CartID:           cartID,
		ProductInStoreID: productInStoreID,
		Quantity:         1,
	}
	err := conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_in_store_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + ?", 1),
		}),
	}).Create(model).Error
	if err != nil {
		logger.Error(ctx, "cart_repository.increment_item failed", "cart_id", cartID, "error", err)
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	var stored CartItemModel
	err = conn.Where("cart_id = ? AND product_in_store_id = ?", cartID, productInStoreID).First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart item: %w", err)
	}
	return toCartItem(&stored), nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID uint64) (bool, error) {
	conn := db.Conn(ctx, r.db)

	// 先删购物车行：并发下单时只有一个请求能删除成功
	res := conn.Where("id = ?", cartID).Delete(&CartModel{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := conn.Where("cart_id = ?", cartID).Delete(&CartItemModel{}).Error; err != nil {
		return false, fmt.Errorf("failed to delete cart items: %w", err)
	}
	return true, nil
}
