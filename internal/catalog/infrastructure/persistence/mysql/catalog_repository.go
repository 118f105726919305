// Package mysql 提供目录仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"gorm.io/gorm"
)

type storeRepository struct{ db *gorm.DB }

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(gdb *gorm.DB) domain.StoreRepository {
	return &storeRepository{db: gdb}
}

func (r *storeRepository) Save(ctx context.Context, store *domain.Store) error {
	model := &StoreModel{ID: store.ID, Code: store.Code, Name: store.Name, CreatedAt: store.CreatedAt}
	if err := db.Conn(ctx, r.db).Save(model).Error; err != nil {
		logger.Error(ctx, "store_repository.save failed", "code", store.Code, "error", err)
		return fmt.Errorf("failed to save store: %w", err)
	}
	store.ID = model.ID
	store.CreatedAt = model.CreatedAt
	return nil
}

func (r *storeRepository) GetByCode(ctx context.Context, code string) (*domain.Store, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *storeRepository) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *storeRepository) first(ctx context.Context, query string, arg any) (*domain.Store, error) {
	var m StoreModel
	err := db.Conn(ctx, r.db).Where(query, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return toStore(&m), nil
}

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	model := &ProductModel{ID: product.ID, Code: product.Code, Name: product.Name}
	if err := db.Conn(ctx, r.db).Save(model).Error; err != nil {
		logger.Error(ctx, "product_repository.save failed", "code", product.Code, "error", err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	product.ID = model.ID
	return nil
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	var m ProductModel
	err := db.Conn(ctx, r.db).Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return toProduct(&m), nil
}

type listingRepository struct{ db *gorm.DB }

// NewListingRepository 创建店铺商品仓储
func NewListingRepository(gdb *gorm.DB) domain.ListingRepository {
	return &listingRepository{db: gdb}
}

func (r *listingRepository) Save(ctx context.Context, l *domain.ProductInStore) error {
	model := &ProductInStoreModel{
		ID:        l.ID,
		UUID:      l.UUID,
		StoreID:   l.StoreID,
		ProductID: l.ProductID,
		Price:     l.Price.StringFixed(2),
	}
	if err := db.Conn(ctx, r.db).Save(model).Error; err != nil {
		logger.Error(ctx, "listing_repository.save failed", "uuid", l.UUID, "error", err)
		return fmt.Errorf("failed to save product in store: %w", err)
	}
	l.ID = model.ID
	return nil
}

func (r *listingRepository) GetInStore(ctx context.Context, storeID uint64, uuid string) (*domain.ProductInStore, error) {
	return r.first(ctx, "store_id = ? AND uuid = ?", storeID, uuid)
}

func (r *listingRepository) GetByStoreAndProduct(ctx context.Context, storeID, productID uint64) (*domain.ProductInStore, error) {
	return r.first(ctx, "store_id = ? AND product_id = ?", storeID, productID)
}

func (r *listingRepository) first(ctx context.Context, query string, args ...any) (*domain.ProductInStore, error) {
	var m ProductInStoreModel
	err := db.Conn(ctx, r.db).Preload("Product").Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product in store: %w", err)
	}
	return toListing(&m), nil
}

func (r *listingRepository) ListByStore(ctx context.Context, storeID uint64) ([]*domain.ProductInStore, error) {
	var models []ProductInStoreModel
	err := db.Conn(ctx, r.db).Preload("Product").
		Where("store_id = ?", storeID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products in store: %w", err)
	}
	out := make([]*domain.ProductInStore, 0, len(models))
	for i := range models {
		out = append(out, toListing(&models[i]))
	}
	return out, nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.ProductInStore, error) {
	out := make(map[uint64]*domain.ProductInStore, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var models []ProductInStoreModel
	err := db.Conn(ctx, r.db).Preload("Product").Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load products in store: %w", err)
	}
	for i := range models {
		out[models[i].ID] = toListing(&models[i])
	}
	return out, nil
}
