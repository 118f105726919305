package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/shopfront/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/metrics"
)

// Catalog 购物车依赖的目录查询，由 catalog 应用服务实现
type Catalog interface {
	GetStore(ctx context.Context, code string) (*catalogdomain.Store, error)
	GetListing(ctx context.Context, storeID uint64, uuid string) (*catalogdomain.ProductInStore, error)
	ListStoreProducts(ctx context.Context, storeID uint64) ([]*catalogdomain.ProductInStore, error)
	GetListingsByIDs(ctx context.Context, ids []uint64) (map[uint64]*catalogdomain.ProductInStore, error)
}

// AddToCartCommand 加入购物车命令
type AddToCartCommand struct {
	StoreCode          string
	ProductInStoreUUID string
	UserID             string
	Session            domain.Session
}

// CartCommandService 购物车命令服务
type CartCommandService struct {
	repo      domain.CartRepository
	catalog   Catalog
	publisher domain.EventPublisher
	tx        db.Transactor
	metrics   *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	catalog Catalog,
	publisher domain.EventPublisher,
	tx db.Transactor,
	m *metrics.Metrics,
) *CartCommandService {
	return &CartCommandService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		tx:        tx,
		metrics:   m,
	}
}

// AddToCart 将店铺商品加入会话购物车，数量加一；会话中没有可用购物车时新建并记录到会话
func (s *CartCommandService) AddToCart(ctx context.Context, cmd AddToCartCommand) (*AddToCartResult, error) {
	store, err := s.catalog.GetStore(ctx, cmd.StoreCode)
	if err != nil {
		return nil, err
	}
	listing, err := s.catalog.GetListing(ctx, store.ID, cmd.ProductInStoreUUID)
	if err != nil {
		return nil, err
	}

	var (
		cart    *domain.Cart
		item    *domain.CartItem
		created bool
	)
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = s.currentCart(txCtx, store, cmd.Session)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = domain.NewCart(uuid.NewString(), store.ID)
			if err := s.repo.Create(txCtx, cart); err != nil {
				return err
			}
			created = true
			if err := s.publisher.Publish(txCtx, domain.TopicCartCreated, cart.UUID, domain.CartCreatedEvent{
				CartUUID:  cart.UUID,
				StoreCode: store.Code,
				UserID:    cmd.UserID,
				Timestamp: time.Now(),
			}); err != nil {
				return err
			}
		}

		item, err = s.repo.IncrementItem(txCtx, cart.ID, listing.ID)
		if err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicCartItemAdded, cart.UUID, domain.CartItemAddedEvent{
			CartUUID:           cart.UUID,
			StoreCode:          store.Code,
			ProductInStoreUUID: listing.UUID,
			Quantity:           item.Quantity,
			Timestamp:          time.Now(),
		})
	})
	if err != nil {
		logger.Error(ctx, "Add to cart failed", "store", cmd.StoreCode, "product_in_store", cmd.ProductInStoreUUID, "error", err)
		return nil, bizerr.Wrap(err)
	}

	if created {
		if err := cmd.Session.SetCart(ctx, store.Code, cart.UUID); err != nil {
			logger.Error(ctx, "Failed to remember cart in session", "store", store.Code, "cart_uuid", cart.UUID, "error", err)
			return nil, bizerr.Internal(err)
		}
		logger.Info(ctx, "Cart created", "store", store.Code, "cart_uuid", cart.UUID)
	}
	if s.metrics != nil {
		s.metrics.CartItemsAdded.Inc()
	}

	return &AddToCartResult{
		StoreCode: store.Code,
		CartUUID:  cart.UUID,
		Quantity:  item.Quantity,
	}, nil
}

// currentCart 返回会话指向的购物车；指针缺失或购物车已不存在时返回 nil
func (s *CartCommandService) currentCart(ctx context.Context, store *catalogdomain.Store, session domain.Session) (*domain.Cart, error) {
	cartUUID, ok, err := session.CartFor(ctx, store.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	cart, err := s.repo.GetInStore(ctx, store.ID, cartUUID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		logger.Warn(ctx, "Session points to a missing cart, starting a new one", "store", store.Code, "cart_uuid", cartUUID)
	}
	return cart, nil
}
