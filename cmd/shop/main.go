// Shop 主程序
// 功能：多店铺零售下单服务，包括店铺商品主数据、会话购物车、下单与订单状态流转
// 架构：基于 DDD + gin + gRPC + Outbox/Kafka
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/wyfcoding/shopfront/internal/cart/application"
	cartmessaging "github.com/wyfcoding/shopfront/internal/cart/infrastructure/messaging"
	cartmysql "github.com/wyfcoding/shopfront/internal/cart/infrastructure/persistence/mysql"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
	carthttp "github.com/wyfcoding/shopfront/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/shopfront/internal/catalog/application"
	catalogmessaging "github.com/wyfcoding/shopfront/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/shopfront/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/shopfront/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/shopfront/internal/order/application"
	ordermessaging "github.com/wyfcoding/shopfront/internal/order/infrastructure/messaging"
	orderpersistence "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence"
	ordermysql "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence/mysql"
	orderredis "github.com/wyfcoding/shopfront/internal/order/infrastructure/persistence/redis"
	ordergrpc "github.com/wyfcoding/shopfront/internal/order/interfaces/grpc"
	orderhttp "github.com/wyfcoding/shopfront/internal/order/interfaces/http"
	"github.com/wyfcoding/shopfront/pkg/cache"
	"github.com/wyfcoding/shopfront/pkg/config"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/metrics"
	"github.com/wyfcoding/shopfront/pkg/middleware"
	"github.com/wyfcoding/shopfront/pkg/mq"
	"github.com/wyfcoding/shopfront/pkg/outbox"
	"github.com/wyfcoding/shopfront/pkg/ratelimit"
	"github.com/wyfcoding/shopfront/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "configs/shop/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting ShopService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize tracer", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error(context.Background(), "Failed to shutdown tracer", "error", err)
		}
	}()

	// 4. 初始化数据库并迁移表结构
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		TracingEnabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := migrate(database.DB); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 5. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 6. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}

	// 7. 初始化仓储与应用服务
	outboxManager := outbox.NewManager(database.DB)
	sessions := session.NewRedisStore(redisCache.GetClient(), time.Duration(cfg.Session.TTL)*time.Second)

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
		cartapp.NewCartCommandService(cartRepo, catalogService, cartmessaging.NewOutboxPublisher(outboxManager), database, metricsInstance),
		cartapp.NewCartQueryService(cartRepo, catalogService),
	)

	orderCache := orderredis.NewOrderRedisRepository(redisCache)
	orderRepo := orderpersistence.NewCompositeOrderRepository(ordermysql.NewOrderRepository(database.DB), orderCache)
	orderPublisher := ordermessaging.NewOutboxEventPublisher(outboxManager)
	orderCommand := orderapp.NewOrderCommandService(orderRepo, orderCache, orderPublisher, database, metricsInstance)
	orderService := orderapp.NewOrderService(
		orderCommand,
		orderapp.NewOrderQueryService(orderRepo, catalogService),
		orderapp.NewCartMaterializer(cartRepo, orderRepo, catalogService, orderPublisher, database, metricsInstance),
		orderapp.NewStatusGateway(orderRepo, orderCommand),
	)

	// 8. 创建服务器
	rateLimiter := ratelimit.NewRedisLimiter(redisCache.GetClient())
	httpServer := createHTTPServer(cfg, metricsInstance, rateLimiter, sessions, catalogService, cartService, orderService)
	grpcServer := createGRPCServer(cfg, metricsInstance, sessions, cartService, orderService)

	g, gctx := errgroup.WithContext(ctx)

	// 9. Outbox 投递
	if cfg.Outbox.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
			TopicPrefix:  cfg.Kafka.TopicPrefix,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to create Kafka producer", "error", err)
		}
		defer producer.Close()

		relay := outbox.NewRelay(outboxManager, producer, metricsInstance, outbox.RelayConfig{
			Interval:  time.Duration(cfg.Outbox.Interval) * time.Millisecond,
			BatchSize: cfg.Outbox.BatchSize,
			Retention: time.Duration(cfg.Outbox.Retention) * time.Hour,
		})
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		logger.Warn(ctx, "Outbox relay disabled, events stay in outbox_messages", "brokers", len(cfg.Kafka.Brokers))
	}

	// 10. 启动指标服务器
	if cfg.Metrics.Enabled {
		metricsServer := metricsInstance.NewHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
		g.Go(func() error { return metrics.Serve(gctx, metricsServer) })
	}

	// 11. 启动 HTTP 服务器
	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// 12. 启动 gRPC 服务器
	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on gRPC address: %w", err)
		}
		logger.Info(gctx, "Starting gRPC server", "addr", addr)
		return grpcServer.Serve(listener)
	})

	// 13. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down ShopService")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "ShopService exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "ShopService stopped")
}

// migrate 按依赖顺序迁移：订单表引用店铺与商品
func migrate(gdb *gorm.DB) error {
	steps := []func(*gorm.DB) error{
		catalogmysql.AutoMigrate,
		cartmysql.AutoMigrate,
		ordermysql.AutoMigrate,
		outbox.AutoMigrate,
	}
	for _, step := range steps {
		if err := step(gdb); err != nil {
			return err
		}
	}
	return nil
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(
	cfg *config.Config,
	m *metrics.Metrics,
	rateLimiter ratelimit.Limiter,
	sessions *session.RedisStore,
	catalogService *catalogapp.CatalogApplicationService,
	cartService *cartapp.CartApplicationService,
	orderService *orderapp.OrderService,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.GinIdentityMiddleware())
	router.Use(middleware.GinRateLimitMiddleware(rateLimiter, cfg.RateLimit))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	// 注册路由
	cataloghttp.NewCatalogHandler(catalogService).RegisterRoutes(router)

	ttl := time.Duration(cfg.Session.TTL) * time.Second
	shop := router.Group("", carthttp.SessionMiddleware(sessions, cfg.Session.CookieName, ttl))
	carthttp.NewCartHandler(cartService).RegisterRoutes(shop)
	orderhttp.NewOrderHandler(orderService).RegisterRoutes(shop)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// createGRPCServer 创建 gRPC 服务器
func createGRPCServer(
	cfg *config.Config,
	m *metrics.Metrics,
	sessions *session.RedisStore,
	cartService *cartapp.CartApplicationService,
	orderService *orderapp.OrderService,
) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCMetricsInterceptor(m),
			middleware.GRPCIdentityInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	}

	server := grpc.NewServer(opts...)

	// 注册服务
	ordergrpc.RegisterShopServiceServer(server, ordergrpc.NewHandler(cartService, orderService, sessions))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ordergrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return server
}
