package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/wyfcoding/shopfront/internal/cart/domain"
	cartmysql "github.com/wyfcoding/shopfront/internal/cart/infrastructure/persistence/mysql"
	"github.com/wyfcoding/shopfront/internal/order/application"
	ordermysql "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence/mysql"
	"github.com/wyfcoding/shopfront/internal/shoptest"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

var shopper = identity.Actor{UserID: "alice", Role: identity.RoleShopper}

func TestPlaceOrder_SnapshotsCartIntoOrder(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")
	tea := app.SeedListing(t, "corner", "tea", "10.00")

	sess := cartdomain.MapSession{}
	app.AddToCart(t, sess, "corner", mug.UUID, 1)
	app.AddToCart(t, sess, "corner", tea.UUID, 3)
	cartUUID := sess["corner"]
	require.NotEmpty(t, cartUUID)

	result, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.NoError(t, err)
	assert.Equal(t, "Order "+result.OrderUUID+" created", result.Message)

	_, stillThere := sess["corner"]
	assert.False(t, stillThere, "cart pointer must be cleared")

	order, err := app.Orders.GetOrder(ctx, shopper, result.OrderUUID)
	require.NoError(t, err)
	assert.Equal(t, "placed", order.Status)
	assert.Equal(t, "alice", order.UserID)
	assert.Equal(t, "corner", order.StoreCode)
	assert.Equal(t, "55.00", order.TotalPrice)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "mug", order.Items[0].ProductCode)
	assert.Equal(t, "25.00", order.Items[0].Price)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, "tea", order.Items[1].ProductCode)
	assert.Equal(t, "10.00", order.Items[1].Price)
	assert.Equal(t, 3, order.Items[1].Quantity)
	assert.Equal(t, "30.00", order.Items[1].TotalPrice)

	// 原购物车已删除
	_, err = app.Cart.GetCart(ctx, "corner", cartdomain.MapSession{"corner": cartUUID})
	assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err))

	assert.Equal(t, float64(1), testutil.ToFloat64(app.Metrics.OrdersPlaced))

	var placed int64
	require.NoError(t, app.DB.Model(&outbox.Message{}).Where("topic = ?", "order.placed").Count(&placed).Error)
	assert.Equal(t, int64(1), placed)
}

func TestPlaceOrder_PriceChangeDoesNotAffectOrder(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	sess := cartdomain.MapSession{}
	app.AddToCart(t, sess, "corner", mug.UUID, 2)
	result, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.NoError(t, err)

	require.NoError(t, app.DB.Table("product_in_store").Where("uuid = ?", mug.UUID).Update("price", "99.00").Error)

	order, err := app.Orders.GetOrder(ctx, shopper, result.OrderUUID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", order.Items[0].Price)
	assert.Equal(t, "50.00", order.TotalPrice)
}

func TestPlaceOrder_NoCartPointer(t *testing.T) {
	app := shoptest.NewApp(t)
	app.SeedStore(t, "corner")

	_, err := app.Orders.PlaceOrder(context.Background(), application.PlaceOrderCommand{
		Actor:     shopper,
		StoreCode: "corner",
		Session:   cartdomain.MapSession{},
	})
	require.Error(t, err)
	assert.Equal(t, application.MsgNoItemsInCart, err.Error())
	assert.Equal(t, bizerr.KindBusiness, bizerr.KindOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(app.Metrics.PlaceOrderRejected.WithLabelValues("no_cart_pointer")))
	assertNoOrders(t, app)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	store := app.SeedStore(t, "corner")

	cart := cartdomain.NewCart("empty-cart", store.ID)
	require.NoError(t, cartmysql.NewCartRepository(app.DB.DB).Create(ctx, cart))

	sess := cartdomain.MapSession{"corner": cart.UUID}
	_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.Error(t, err)
	assert.Equal(t, application.MsgNoItemsInCart, err.Error())
	assert.Equal(t, bizerr.KindBusiness, bizerr.KindOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(app.Metrics.PlaceOrderRejected.WithLabelValues("empty_cart")))
	assertNoOrders(t, app)
}

func TestPlaceOrder_StaleAndCrossStorePointer(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	app.SeedStore(t, "market")
	apple := app.SeedListing(t, "market", "apple", "1.50")

	marketSession := cartdomain.MapSession{}
	app.AddToCart(t, marketSession, "market", apple.UUID, 1)

	cases := map[string]string{
		"stale":       "00000000-0000-0000-0000-000000000000",
		"cross_store": marketSession["market"],
	}
	for name, cartUUID := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{
				Actor:     shopper,
				StoreCode: "corner",
				Session:   cartdomain.MapSession{"corner": cartUUID},
			})
			require.Error(t, err)
			assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err))
		})
	}
	assertNoOrders(t, app)
}

func TestPlaceOrder_UnknownStore(t *testing.T) {
	app := shoptest.NewApp(t)

	_, err := app.Orders.PlaceOrder(context.Background(), application.PlaceOrderCommand{
		Actor:     shopper,
		StoreCode: "nowhere",
		Session:   cartdomain.MapSession{},
	})
	require.Error(t, err)
	assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err))
	assert.Equal(t, "Shop nowhere does not exist", err.Error())
}

func TestPlaceOrder_RequiresAuthenticatedActor(t *testing.T) {
	app := shoptest.NewApp(t)
	app.SeedStore(t, "corner")

	_, err := app.Orders.PlaceOrder(context.Background(), application.PlaceOrderCommand{
		Actor:     identity.Actor{Role: identity.RoleShopper},
		StoreCode: "corner",
		Session:   cartdomain.MapSession{},
	})
	assert.Equal(t, bizerr.KindUnauthenticated, bizerr.KindOf(err))
}

func TestPlaceOrder_ConcurrentRequestsCreateOneOrder(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")
	tea := app.SeedListing(t, "corner", "tea", "10.00")

	sess := cartdomain.MapSession{}
	app.AddToCart(t, sess, "corner", mug.UUID, 1)
	app.AddToCart(t, sess, "corner", tea.UUID, 3)
	cartUUID := sess["corner"]

	const workers = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 每个请求各自持有会话副本，模拟同一购物者的并发请求
			_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{
				Actor:     shopper,
				StoreCode: "corner",
				Session:   cartdomain.MapSession{"corner": cartUUID},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	require.Len(t, errs, workers-1)
	for _, err := range errs {
		assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err), err.Error())
	}

	orders, err := app.Orders.ListCustomerOrders(ctx, shopper, "corner")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
}

func TestPlaceOrder_MultipleOrdersOverTime(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	sess := cartdomain.MapSession{}
	for i := 0; i < 2; i++ {
		app.AddToCart(t, sess, "corner", mug.UUID, 1)
		_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
		require.NoError(t, err)
	}

	orders, err := app.Orders.ListCustomerOrders(ctx, shopper, "corner")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

// flakySession 前 failures 次 ClearCart 返回错误
type flakySession struct {
	cartdomain.MapSession
	failures int
	calls    int
}

func (f *flakySession) ClearCart(ctx context.Context, storeCode string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("session store unavailable")
	}
	return f.MapSession.ClearCart(ctx, storeCode)
}

func TestPlaceOrder_RetriesPointerClear(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	sess := &flakySession{MapSession: cartdomain.MapSession{}, failures: 1}
	app.AddToCart(t, sess, "corner", mug.UUID, 1)

	_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.NoError(t, err)
	assert.Equal(t, 2, sess.calls)
	_, stillThere := sess.MapSession["corner"]
	assert.False(t, stillThere)
}

func TestPlaceOrder_LeftoverPointerIsDroppedOnNextAttempt(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	sess := &flakySession{MapSession: cartdomain.MapSession{}, failures: 2}
	app.AddToCart(t, sess, "corner", mug.UUID, 1)

	// 会话存储持续失败时订单仍然成立
	_, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.NoError(t, err)
	require.NotEmpty(t, sess.MapSession["corner"])

	_, err = app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err))
	_, stillThere := sess.MapSession["corner"]
	assert.False(t, stillThere)

	_, err = app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.Error(t, err)
	assert.Equal(t, application.MsgNoItemsInCart, err.Error())

	orders, err := app.Orders.ListCustomerOrders(ctx, shopper, "corner")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, string, string, any) error { return p.err }

func TestPlaceOrder_PublishFailureRollsBackEverything(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	sess := cartdomain.MapSession{}
	app.AddToCart(t, sess, "corner", mug.UUID, 2)
	cartUUID := sess["corner"]

	materializer := application.NewCartMaterializer(
		cartmysql.NewCartRepository(app.DB.DB),
		ordermysql.NewOrderRepository(app.DB.DB),
		app.Catalog,
		failingPublisher{err: errors.New("outbox unavailable")},
		app.DB,
		app.Metrics,
	)
	_, err := materializer.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.Error(t, err)
	assert.Equal(t, bizerr.KindInternal, bizerr.KindOf(err))

	assertNoOrders(t, app)
	var orderItems int64
	require.NoError(t, app.DB.Table("order_items").Count(&orderItems).Error)
	assert.Zero(t, orderItems)

	assert.Equal(t, cartUUID, sess["corner"], "pointer must survive a failed placement")
	view, err := app.Cart.GetCart(ctx, "corner", sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Zero(t, testutil.ToFloat64(app.Metrics.OrdersPlaced))

	// 故障恢复后同一购物车仍可正常下单
	result, err := app.Orders.PlaceOrder(ctx, application.PlaceOrderCommand{Actor: shopper, StoreCode: "corner", Session: sess})
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderUUID)
}

func assertNoOrders(t *testing.T, app *shoptest.App) {
	t.Helper()
	var count int64
	require.NoError(t, app.DB.Table("orders").Count(&count).Error)
	assert.Zero(t, count)
}
