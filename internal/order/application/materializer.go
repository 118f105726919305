package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	cartdomain "github.com/wyfcoding/shopfront/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/metrics"
)

// MsgNoItemsInCart 购物车缺失或为空时面向用户的提示
const MsgNoItemsInCart = "No items in cart to order"

// 清理会话指针的尝试次数
const clearPointerAttempts = 2

// Catalog 订单依赖的目录查询，由 catalog 应用服务实现
type Catalog interface {
	GetStore(ctx context.Context, code string) (*catalogdomain.Store, error)
	GetListingsByIDs(ctx context.Context, ids []uint64) (map[uint64]*catalogdomain.ProductInStore, error)
}

// CartStore 下单时读取并删除购物车，cart 仓储满足该接口
type CartStore interface {
	GetInStore(ctx context.Context, storeID uint64, uuid string) (*cartdomain.Cart, error)
	Delete(ctx context.Context, cartID uint64) (bool, error)
}

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	Actor     identity.Actor
	StoreCode string
	Session   cartdomain.Session
}

// CartMaterializer 将会话中的购物车转换为订单
type CartMaterializer struct {
	carts     CartStore
	orders    domain.OrderRepository
	catalog   Catalog
	publisher domain.EventPublisher
	tx        db.Transactor
	metrics   *metrics.Metrics
}

// NewCartMaterializer 创建 CartMaterializer 实例
func NewCartMaterializer(
	carts CartStore,
	orders domain.OrderRepository,
	catalog Catalog,
	publisher domain.EventPublisher,
	tx db.Transactor,
	m *metrics.Metrics,
) *CartMaterializer {
	return &CartMaterializer{
		carts:     carts,
		orders:    orders,
		catalog:   catalog,
		publisher: publisher,
		tx:        tx,
		metrics:   m,
	}
}

// PlaceOrder 把当前店铺的购物车物化为 placed 状态的订单。
// 订单写入、购物车删除与事件写入在同一事务内完成；购物车删除是并发下单的串行化点，
// 删除未命中的一方回滚并得到 NotFound。
func (s *CartMaterializer) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error) {
	if !cmd.Actor.Authenticated() {
		return nil, bizerr.Unauthenticated("Login required to place an order")
	}

	store, err := s.catalog.GetStore(ctx, cmd.StoreCode)
	if err != nil {
		return nil, err
	}

	cartUUID, ok, err := cmd.Session.CartFor(ctx, store.Code)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if !ok {
		s.reject(ctx, "no_cart_pointer", store.Code, "")
		return nil, bizerr.Business("empty_cart", MsgNoItemsInCart)
	}

	var (
		order *domain.Order
		stale bool
	)
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		cart, err := s.carts.GetInStore(txCtx, store.ID, cartUUID)
		if err != nil {
			return err
		}
		if cart == nil {
			stale = true
			s.reject(ctx, "stale_cart", store.Code, cartUUID)
			return bizerr.NotFound("cart_not_found", "Cart %s does not exist", cartUUID)
		}
		if cart.IsEmpty() {
			s.reject(ctx, "empty_cart", store.Code, cartUUID)
			return bizerr.Business("empty_cart", MsgNoItemsInCart)
		}

		deleted, err := s.carts.Delete(txCtx, cart.ID)
		if err != nil {
			return err
		}
		if !deleted {
			stale = true
			s.reject(ctx, "cart_claimed", store.Code, cartUUID)
			return bizerr.NotFound("cart_not_found", "Cart %s does not exist", cartUUID)
		}

		listings, err := s.catalog.GetListingsByIDs(txCtx, cart.ProductInStoreIDs())
		if err != nil {
			return err
		}

		order = domain.NewOrder(uuid.NewString(), cmd.Actor.UserID, store.ID)
		order.StoreCode = store.Code
		for _, item := range cart.Items {
			listing, ok := listings[item.ProductInStoreID]
			if !ok {
				return fmt.Errorf("cart item %s references missing product_in_store %d", item.UUID, item.ProductInStoreID)
			}
			line := order.AddItem(listing.ProductID, listing.Price, item.Quantity)
			if listing.Product != nil {
				line.ProductCode = listing.Product.Code
				line.ProductName = listing.Product.Name
			}
		}
		if err := s.orders.Create(txCtx, order); err != nil {
			return err
		}

		return s.publisher.Publish(txCtx, domain.TopicOrderPlaced, order.UUID, newOrderPlacedEvent(order, cart.UUID))
	})
	if err != nil {
		if bizerr.KindOf(err) == bizerr.KindInternal {
			logger.Error(ctx, "Place order failed", "store", store.Code, "cart_uuid", cartUUID, "error", err)
		}
		// 指向已不存在购物车的指针没有保留价值，下次下单直接得到空购物车提示
		if stale {
			s.clearPointer(ctx, cmd.Session, store.Code, cartUUID)
		}
		return nil, bizerr.Wrap(err)
	}

	s.clearPointer(ctx, cmd.Session, store.Code, cartUUID)
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	logger.Info(ctx, "Order placed",
		"order_uuid", order.UUID,
		"store", store.Code,
		"user_id", cmd.Actor.UserID,
		"items", len(order.Items),
		"total_price", order.TotalPrice().StringFixed(2),
	)

	return &PlaceOrderResult{
		OrderUUID: order.UUID,
		Message:   fmt.Sprintf("Order %s created", order.UUID),
	}, nil
}

// clearPointer 删除会话中的购物车指针，失败时重试一次。
// 仍失败时指针指向已删除的购物车，下次下单按过期指针处理并被清除。
func (s *CartMaterializer) clearPointer(ctx context.Context, sess cartdomain.Session, storeCode, cartUUID string) {
	var err error
	for attempt := 1; attempt <= clearPointerAttempts; attempt++ {
		if err = sess.ClearCart(ctx, storeCode); err == nil {
			return
		}
		logger.Warn(ctx, "Failed to clear cart pointer", "store", storeCode, "cart_uuid", cartUUID, "attempt", attempt, "error", err)
	}
	logger.Error(ctx, "Cart pointer left in session", "store", storeCode, "cart_uuid", cartUUID, "error", err)
}

func (s *CartMaterializer) reject(ctx context.Context, reason, storeCode, cartUUID string) {
	logger.Info(ctx, "Place order rejected", "reason", reason, "store", storeCode, "cart_uuid", cartUUID)
	if s.metrics != nil {
		s.metrics.PlaceOrderRejected.WithLabelValues(reason).Inc()
	}
}

func newOrderPlacedEvent(order *domain.Order, cartUUID string) domain.OrderPlacedEvent {
	items := make([]domain.OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderPlacedItem{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
		})
	}
	return domain.OrderPlacedEvent{
		OrderUUID:  order.UUID,
		UserID:     order.UserID,
		StoreCode:  order.StoreCode,
		CartUUID:   cartUUID,
		Items:      items,
		TotalPrice: order.TotalPrice().StringFixed(2),
		OccurredOn: time.Now(),
	}
}
