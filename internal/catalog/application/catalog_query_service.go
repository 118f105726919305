package application

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	stores   domain.StoreRepository
	listings domain.ListingRepository
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(
	stores domain.StoreRepository,
	listings domain.ListingRepository,
) *CatalogQueryService {
	return &CatalogQueryService{
		stores:   stores,
		listings: listings,
	}
}

// GetStore 按代码获取店铺，不存在返回 NotFound
func (s *CatalogQueryService) GetStore(ctx context.Context, code string) (*domain.Store, error) {
	store, err := s.stores.GetByCode(ctx, code)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if store == nil {
		return nil, bizerr.NotFound("store_not_found", "Shop %s does not exist", code)
	}
	return store, nil
}

// GetListing 获取店铺内的商品，uuid 属于其它店铺时同样视为不存在
func (s *CatalogQueryService) GetListing(ctx context.Context, storeID uint64, uuid string) (*domain.ProductInStore, error) {
	listing, err := s.listings.GetInStore(ctx, storeID, uuid)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if listing == nil {
		return nil, bizerr.NotFound("product_not_found", "Product %s does not exist in this shop", uuid)
	}
	return listing, nil
}

// ListStoreProducts 列出店铺全部上架商品
func (s *CatalogQueryService) ListStoreProducts(ctx context.Context, storeID uint64) ([]*domain.ProductInStore, error) {
	listings, err := s.listings.ListByStore(ctx, storeID)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	return listings, nil
}

// GetListingsByIDs 批量加载店铺商品
func (s *CatalogQueryService) GetListingsByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.ProductInStore, error) {
	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	return listings, nil
}
