package application

import (
	"context"

	"github.com/wyfcoding/shopfront/pkg/identity"
)

// OrderService 订单服务门面，整合下单、状态变更与查询
type OrderService struct {
	Command      *OrderCommandService
	Query        *OrderQueryService
	Materializer *CartMaterializer
	Gateway      *StatusGateway
}

// NewOrderService 构造函数
func NewOrderService(
	command *OrderCommandService,
	query *OrderQueryService,
	materializer *CartMaterializer,
	gateway *StatusGateway,
) *OrderService {
	return &OrderService{
		Command:      command,
		Query:        query,
		Materializer: materializer,
		Gateway:      gateway,
	}
}

// --- Command (Writes) ---

// PlaceOrder 下单
func (s *OrderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error) {
	return s.Materializer.PlaceOrder(ctx, cmd)
}

// ChangeStatus 推进订单状态
func (s *OrderService) ChangeStatus(ctx context.Context, actor identity.Actor, orderUUID, eventName string) (*ChangeStatusResult, error) {
	return s.Gateway.ChangeStatus(ctx, actor, orderUUID, eventName)
}

// --- Query (Reads) ---

// GetOrder 获取订单
func (s *OrderService) GetOrder(ctx context.Context, actor identity.Actor, orderUUID string) (*OrderDTO, error) {
	return s.Query.GetOrder(ctx, actor, orderUUID)
}

// ListCustomerOrders 购物者订单列表
func (s *OrderService) ListCustomerOrders(ctx context.Context, actor identity.Actor, storeCode string) ([]*OrderDTO, error) {
	return s.Query.ListCustomerOrders(ctx, actor, storeCode)
}

// ListOrders 员工订单列表
func (s *OrderService) ListOrders(ctx context.Context, actor identity.Actor, storeCode string) ([]*OrderDTO, error) {
	return s.Query.ListOrders(ctx, actor, storeCode)
}
