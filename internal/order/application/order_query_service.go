package application

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/identity"
)

// OrderQueryService 处理所有订单相关的查询操作（Queries）。
type OrderQueryService struct {
	repo    domain.OrderRepository
	catalog Catalog
}

// NewOrderQueryService 构造函数。
func NewOrderQueryService(repo domain.OrderRepository, catalog Catalog) *OrderQueryService {
	return &OrderQueryService{
		repo:    repo,
		catalog: catalog,
	}
}

// GetOrder 获取订单；购物者只能看到自己的订单，其它订单一律视为不存在
func (s *OrderQueryService) GetOrder(ctx context.Context, actor identity.Actor, orderUUID string) (*OrderDTO, error) {
	order, err := s.repo.Get(ctx, orderUUID)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if order == nil || (!actor.IsStaff() && order.UserID != actor.UserID) {
		return nil, bizerr.NotFound("order_not_found", "Order %s does not exist", orderUUID)
	}
	return toOrderDTO(order), nil
}

// ListCustomerOrders 列出调用方在某店铺的订单，storeCode 为空时列出全部店铺
func (s *OrderQueryService) ListCustomerOrders(ctx context.Context, actor identity.Actor, storeCode string) ([]*OrderDTO, error) {
	if !actor.Authenticated() {
		return nil, bizerr.Unauthenticated("Login required to view orders")
	}
	filter := domain.ListFilter{UserID: actor.UserID}
	if err := s.scopeToStore(ctx, &filter, storeCode); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListOrders 员工视角的订单列表，按店铺、创建时间倒序、更新时间倒序
func (s *OrderQueryService) ListOrders(ctx context.Context, actor identity.Actor, storeCode string) ([]*OrderDTO, error) {
	if !actor.IsStaff() {
		return nil, bizerr.Forbidden("staff_only", "Only store staff can list all orders")
	}
	var filter domain.ListFilter
	if err := s.scopeToStore(ctx, &filter, storeCode); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *OrderQueryService) scopeToStore(ctx context.Context, filter *domain.ListFilter, storeCode string) error {
	if storeCode == "" {
		return nil
	}
	store, err := s.catalog.GetStore(ctx, storeCode)
	if err != nil {
		return err
	}
	filter.StoreID = store.ID
	return nil
}

func (s *OrderQueryService) list(ctx context.Context, filter domain.ListFilter) ([]*OrderDTO, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	return toOrderDTOs(orders), nil
}
