// Package domain 包含订单的领域模型与状态机
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order 订单实体
// 创建后只有 Status 与 UpdatedAt 会变化，订单不会被删除
type Order struct {
	ID      uint64
	UUID    string
	UserID  string
	StoreID uint64
	// 读取时填充
	StoreCode string
	Status    OrderStatus
	Items     []*OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单行，价格为下单时的快照
type OrderItem struct {
	ID        uint64
	OrderID   uint64
	ProductID uint64
	// 读取时填充
	ProductCode string
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// NewOrder 创建处于 placed 状态的订单
func NewOrder(uuid, userID string, storeID uint64) *Order {
	now := time.Now()
	return &Order{
		UUID:      uuid,
		UserID:    userID,
		StoreID:   storeID,
		Status:    OrderStatusPlaced,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem 追加订单行
func (o *Order) AddItem(productID uint64, price decimal.Decimal, quantity int) *OrderItem {
	item := &OrderItem{
		OrderID:   o.ID,
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
	}
	o.Items = append(o.Items, item)
	return item
}

// TotalPrice 订单行小计
func (i *OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrice 订单总价
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}
