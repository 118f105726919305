package application

import (
	"github.com/wyfcoding/shopfront/internal/order/domain"
)

// OrderItemDTO 订单行
type OrderItemDTO struct {
	ProductID   uint64 `json:"product_id"`
	ProductCode string `json:"product_code,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

// OrderDTO 订单视图
type OrderDTO struct {
	UUID       string         `json:"uuid"`
	UserID     string         `json:"user_id"`
	StoreID    uint64         `json:"store_id"`
	StoreCode  string         `json:"store_code,omitempty"`
	Status     string         `json:"status"`
	Items      []OrderItemDTO `json:"items"`
	TotalPrice string         `json:"total_price"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

// PlaceOrderResult 下单结果
type PlaceOrderResult struct {
	OrderUUID string `json:"order_uuid"`
	Message   string `json:"message"`
}

// ChangeStatusResult 状态变更结果
type ChangeStatusResult struct {
	OrderUUID string `json:"order_uuid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func toOrderDTO(o *domain.Order) *OrderDTO {
	dto := &OrderDTO{
		UUID:       o.UUID,
		UserID:     o.UserID,
		StoreID:    o.StoreID,
		StoreCode:  o.StoreCode,
		Status:     string(o.Status),
		Items:      make([]OrderItemDTO, 0, len(o.Items)),
		TotalPrice: o.TotalPrice().StringFixed(2),
		CreatedAt:  o.CreatedAt.Unix(),
		UpdatedAt:  o.UpdatedAt.Unix(),
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice().StringFixed(2),
		})
	}
	return dto
}

func toOrderDTOs(orders []*domain.Order) []*OrderDTO {
	out := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}
