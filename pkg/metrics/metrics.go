// Package metrics 提供 Prometheus 指标定义与暴露
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

const namespace = "shop"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数，按 method/path/status
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// gRPC 请求计数，按 method/code
	GRPCRequestsTotal *prometheus.CounterVec
	// gRPC 请求耗时
	GRPCRequestDuration *prometheus.HistogramVec

	// 成功下单数
	OrdersPlaced prometheus.Counter
	// 下单被拒绝数，按原因
	PlaceOrderRejected *prometheus.CounterVec
	// 订单状态迁移，按事件与结果
	OrderTransitions *prometheus.CounterVec
	// 加入购物车次数
	CartItemsAdded prometheus.Counter
	// Outbox 投递，按结果
	OutboxDelivered *prometheus.CounterVec

	registry *prometheus.Registry
}

// New 创建指标实例，每个实例拥有独立的 Registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "grpc_requests_total",
			Help:        "Total gRPC requests",
			ConstLabels: constLabels,
		}, []string{"method", "code"}),
		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "grpc_request_duration_seconds",
			Help:        "gRPC request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "orders_placed_total",
			Help:        "Orders materialized from carts",
			ConstLabels: constLabels,
		}),
		PlaceOrderRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "place_order_rejected_total",
			Help:        "Place order attempts that produced no order",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "order_transitions_total",
			Help:        "Order status transition attempts",
			ConstLabels: constLabels,
		}, []string{"event", "result"}),
		CartItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cart_items_added_total",
			Help:        "Add-to-cart operations",
			ConstLabels: constLabels,
		}),
		OutboxDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "outbox_delivered_total",
			Help:        "Outbox messages relayed to the broker",
			ConstLabels: constLabels,
		}, []string{"result"}),
		registry: prometheus.NewRegistry(),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.OrdersPlaced,
		m.PlaceOrderRejected,
		m.OrderTransitions,
		m.CartItemsAdded,
		m.OutboxDelivered,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}
	return nil
}

// Registry 返回指标所在的 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewHTTPServer 创建 Prometheus HTTP 服务器
func (m *Metrics) NewHTTPServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Serve 启动服务器直到 ctx 结束
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting Prometheus HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
