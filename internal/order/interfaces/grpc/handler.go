// Package grpc 提供 shop.v1.ShopService 的 gRPC 接入
package grpc

import (
	"context"

	cartapp "github.com/wyfcoding/shopfront/internal/cart/application"
	cartdomain "github.com/wyfcoding/shopfront/internal/cart/domain"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
	"github.com/wyfcoding/shopfront/internal/order/application"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SessionOpener 按会话 ID 打开购物会话
type SessionOpener interface {
	Open(sessionID string) cartdomain.Session
}

// Handler gRPC 处理器
type Handler struct {
	carts    *cartapp.CartApplicationService
	orders   *application.OrderService
	sessions SessionOpener
}

// NewHandler 创建 gRPC 处理器实例
func NewHandler(carts *cartapp.CartApplicationService, orders *application.OrderService, sessions SessionOpener) *Handler {
	return &Handler{
		carts:    carts,
		orders:   orders,
		sessions: sessions,
	}
}

// AddToCart 加入购物车
func (h *Handler) AddToCart(ctx context.Context, req *AddToCartRequest) (*AddToCartResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}
	result, err := h.carts.AddToCart(ctx, cartapp.AddToCartCommand{
		StoreCode:          req.StoreCode,
		ProductInStoreUUID: req.ProductInStoreUUID,
		UserID:             identity.FromContext(ctx).UserID,
		Session:            h.sessions.Open(sessionID),
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &AddToCartResponse{
		SessionID: sessionID,
		CartUUID:  result.CartUUID,
		Quantity:  result.Quantity,
	}, nil
}

// PlaceOrder 购物车下单
func (h *Handler) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	result, err := h.orders.PlaceOrder(ctx, application.PlaceOrderCommand{
		Actor:     identity.FromContext(ctx),
		StoreCode: req.StoreCode,
		Session:   h.sessions.Open(req.SessionID),
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &PlaceOrderResponse{OrderUUID: result.OrderUUID, Message: result.Message}, nil
}

// ChangeOrderStatus 推进订单状态
func (h *Handler) ChangeOrderStatus(ctx context.Context, req *ChangeOrderStatusRequest) (*ChangeOrderStatusResponse, error) {
	result, err := h.orders.ChangeStatus(ctx, identity.FromContext(ctx), req.OrderUUID, req.ChangeStatus)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &ChangeOrderStatusResponse{
		OrderUUID: result.OrderUUID,
		Status:    result.Status,
		Message:   result.Message,
	}, nil
}

// ListOrders 员工订单列表
func (h *Handler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	orders, err := h.orders.ListOrders(ctx, identity.FromContext(ctx), req.StoreCode)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	resp := &ListOrdersResponse{Orders: make([]Order, 0, len(orders))}
	for _, o := range orders {
		out := Order{
			UUID:       o.UUID,
			UserID:     o.UserID,
			StoreCode:  o.StoreCode,
			Status:     o.Status,
			Items:      make([]OrderItem, 0, len(o.Items)),
			TotalPrice: o.TotalPrice,
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		}
		for _, item := range o.Items {
			out.Items = append(out.Items, OrderItem{
				ProductCode: item.ProductCode,
				Price:       item.Price,
				Quantity:    item.Quantity,
				TotalPrice:  item.TotalPrice,
			})
		}
		resp.Orders = append(resp.Orders, out)
	}
	return resp, nil
}

// toStatus 业务错误按类别映射为 gRPC 状态码，内部错误不暴露细节
func toStatus(ctx context.Context, err error) error {
	kind := bizerr.KindOf(err)
	if kind == bizerr.KindInternal {
		logger.Error(ctx, "gRPC request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(bizerr.GRPCCode(kind), err.Error())
}
