package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/shopfront/internal/cart/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo    domain.CartRepository
	catalog Catalog
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository, catalog Catalog) *CartQueryService {
	return &CartQueryService{repo: repo, catalog: catalog}
}

// GetCart 返回会话在该店铺下的购物车及总价；会话指向的购物车不存在时返回 NotFound
func (s *CartQueryService) GetCart(ctx context.Context, storeCode string, session domain.Session) (*CartView, error) {
	store, err := s.catalog.GetStore(ctx, storeCode)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		StoreCode:      store.Code,
		Items:          []CartLine{},
		TotalCartPrice: money(decimal.Zero),
	}

	cartUUID, ok, err := session.CartFor(ctx, store.Code)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if !ok {
		return view, nil
	}

	cart, err := s.repo.GetInStore(ctx, store.ID, cartUUID)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if cart == nil {
		return nil, bizerr.NotFound("cart_not_found", "Cart %s does not exist", cartUUID)
	}

	listings, err := s.catalog.GetListingsByIDs(ctx, cart.ProductInStoreIDs())
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	view.CartUUID = cart.UUID
	for _, item := range cart.Items {
		listing, ok := listings[item.ProductInStoreID]
		if !ok {
			logger.Warn(ctx, "Cart item references a missing listing", "cart_uuid", cart.UUID, "product_in_store_id", item.ProductInStoreID)
			continue
		}
		lineTotal := listing.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		code, name := productCodeAndName(listing)
		view.Items = append(view.Items, CartLine{
			UUID:               item.UUID,
			ProductInStoreUUID: listing.UUID,
			ProductCode:        code,
			ProductName:        name,
			Price:              money(listing.Price),
			Quantity:           item.Quantity,
			TotalPrice:         money(lineTotal),
		})
	}
	view.TotalCartPrice = money(total)
	return view, nil
}

// GetStorefront 返回店铺商品列表，并标注每个商品在当前购物车中的数量
func (s *CartQueryService) GetStorefront(ctx context.Context, storeCode string, session domain.Session) (*StorefrontView, error) {
	store, err := s.catalog.GetStore(ctx, storeCode)
	if err != nil {
		return nil, err
	}
	listings, err := s.catalog.ListStoreProducts(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	var cart *domain.Cart
	if cartUUID, ok, err := session.CartFor(ctx, store.Code); err != nil {
		return nil, bizerr.Internal(err)
	} else if ok {
		if cart, err = s.repo.GetInStore(ctx, store.ID, cartUUID); err != nil {
			return nil, bizerr.Internal(err)
		}
	}

	view := &StorefrontView{
		StoreCode: store.Code,
		StoreName: store.Name,
		Products:  make([]StorefrontItem, 0, len(listings)),
	}
	for _, l := range listings {
		code, name := productCodeAndName(l)
		inCart := 0
		if cart != nil {
			inCart = cart.QuantityOf(l.ID)
		}
		view.Products = append(view.Products, StorefrontItem{
			UUID:        l.UUID,
			ProductCode: code,
			ProductName: name,
			Price:       money(l.Price),
			InCart:      inCart,
		})
	}
	return view, nil
}
