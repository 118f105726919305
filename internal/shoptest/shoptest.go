// Package shoptest 为各上下文的测试组装内存数据库、miniredis 与完整的应用服务
package shoptest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	cartapp "github.com/wyfcoding/shopfront/internal/cart/application"
	cartdomain "github.com/wyfcoding/shopfront/internal/cart/domain"
	cartmessaging "github.com/wyfcoding/shopfront/internal/cart/infrastructure/messaging"
	cartmysql "github.com/wyfcoding/shopfront/internal/cart/infrastructure/persistence/mysql"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
	catalogapp "github.com/wyfcoding/shopfront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/shopfront/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/shopfront/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/shopfront/internal/catalog/infrastructure/persistence/mysql"
	orderapp "github.com/wyfcoding/shopfront/internal/order/application"
	ordermessaging "github.com/wyfcoding/shopfront/internal/order/infrastructure/messaging"
	orderpersistence "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence"
	ordermysql "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence/mysql"
	orderredis "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence/redis"
	"github.com/wyfcoding/shopfront/pkg/cache"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/metrics"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

// NewDB 创建独立的内存 SQLite 并迁移全部表；单连接，事务内查询必须使用事务 context
func NewDB(t testing.TB) *db.DB {
	t.Helper()
	database, err := db.Init(db.Config{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, catalogmysql.AutoMigrate(database.DB))
	require.NoError(t, cartmysql.AutoMigrate(database.DB))
	require.NoError(t, ordermysql.AutoMigrate(database.DB))
	require.NoError(t, outbox.AutoMigrate(database.DB))
	return database
}

// NewRedis 启动 miniredis
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// App 组装好的应用服务
type App struct {
	DB       *db.DB
	Redis    *redis.Client
	Mini     *miniredis.Miniredis
	Metrics  *metrics.Metrics
	Outbox   *outbox.Manager
	Sessions *session.RedisStore
	Catalog  *catalogapp.CatalogApplicationService
	Cart     *cartapp.CartApplicationService
	Orders   *orderapp.OrderService
}

// NewApp 以 cmd/shop 相同的方式组装服务
func NewApp(t testing.TB) *App {
	t.Helper()
	database := NewDB(t)
	mr, client := NewRedis(t)

	m := metrics.New("shop-test")
	require.NoError(t, m.Register())

	outboxManager := outbox.NewManager(database.DB)
	redisCache := cache.NewFromClient(client)

	catalogService := catalogapp.NewCatalogApplicationService(
		catalogapp.NewCatalogCommandService(
			catalogmysql.NewStoreRepository(database.DB),
			catalogmysql.NewProductRepository(database.DB),
			catalogmysql.NewListingRepository(database.DB),
			catalogmessaging.NewOutboxPublisher(outboxManager),
			database,
		),
		catalogapp.NewCatalogQueryService(
			catalogmysql.NewStoreRepository(database.DB),
			catalogmysql.NewListingRepository(database.DB),
		),
	)

	cartRepo := cartmysql.NewCartRepository(database.DB)
	cartService := cartapp.NewCartApplicationService(
		cartapp.NewCartCommandService(cartRepo, catalogService, cartmessaging.NewOutboxPublisher(outboxManager), database, m),
		cartapp.NewCartQueryService(cartRepo, catalogService),
	)

	orderCache := orderredis.NewOrderRedisRepository(redisCache)
	orderRepo := orderpersistence.NewCompositeOrderRepository(ordermysql.NewOrderRepository(database.DB), orderCache)
	publisher := ordermessaging.NewOutboxEventPublisher(outboxManager)
	command := orderapp.NewOrderCommandService(orderRepo, orderCache, publisher, database, m)
	orders := orderapp.NewOrderService(
		command,
		orderapp.NewOrderQueryService(orderRepo, catalogService),
		orderapp.NewCartMaterializer(cartRepo, orderRepo, catalogService, publisher, database, m),
		orderapp.NewStatusGateway(orderRepo, command),
	)

	return &App{
		DB:       database,
		Redis:    client,
		Mini:     mr,
		Metrics:  m,
		Outbox:   outboxManager,
		Sessions: session.NewRedisStore(client, time.Hour),
		Catalog:  catalogService,
		Cart:     cartService,
		Orders:   orders,
	}
}

// SeedStore 创建店铺
func (a *App) SeedStore(t testing.TB, code string) *catalogdomain.Store {
	t.Helper()
	store, err := a.Catalog.CreateStore(context.Background(), catalogapp.CreateStoreCommand{Code: code, Name: code + " shop"})
	require.NoError(t, err)
	return store
}

// SeedListing 创建商品并以 price 上架到店铺
func (a *App) SeedListing(t testing.TB, storeCode, productCode, price string) *catalogdomain.ProductInStore {
	t.Helper()
	ctx := context.Background()
	if _, err := a.Catalog.CreateProduct(ctx, catalogapp.CreateProductCommand{Code: productCode, Name: productCode + " name"}); err != nil {
		// 商品可以在多个店铺上架，重复创建时沿用已有商品
		require.Contains(t, err.Error(), "already exists")
	}
	listing, err := a.Catalog.ListProduct(ctx, catalogapp.ListProductCommand{
		StoreCode:   storeCode,
		ProductCode: productCode,
		Price:       decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return listing
}

// AddToCart 将商品加入会话购物车 times 次
func (a *App) AddToCart(t testing.TB, sess cartdomain.Session, storeCode, listingUUID string, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := a.Cart.AddToCart(context.Background(), cartapp.AddToCartCommand{
			StoreCode:          storeCode,
			ProductInStoreUUID: listingUUID,
			Session:            sess,
		})
		require.NoError(t, err)
	}
}
