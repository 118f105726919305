package domain

import "context"

// StoreRepository 店铺仓储，未找到时返回 (nil, nil)
type StoreRepository interface {
	Save(ctx context.Context, store *Store) error
	GetByCode(ctx context.Context, code string) (*Store, error)
	GetByName(ctx context.Context, name string) (*Store, error)
}

// ProductRepository 商品仓储
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByCode(ctx context.Context, code string) (*Product, error)
}

// ListingRepository 店铺商品仓储
type ListingRepository interface {
	Save(ctx context.Context, listing *ProductInStore) error
	// GetInStore 按 uuid 查找，且必须属于指定店铺
	GetInStore(ctx context.Context, storeID uint64, uuid string) (*ProductInStore, error)
	GetByStoreAndProduct(ctx context.Context, storeID, productID uint64) (*ProductInStore, error)
	ListByStore(ctx context.Context, storeID uint64) ([]*ProductInStore, error)
	// GetByIDs 批量加载，返回 id → listing
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*ProductInStore, error)
}
