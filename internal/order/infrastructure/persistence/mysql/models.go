package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/shopfront/internal/order/domain"
	"gorm.io/gorm"
)

// OrderModel 订单表
type OrderModel struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time        `gorm:"column:created_at;index:idx_orders_listing,priority:2,sort:desc"`
	UpdatedAt time.Time        `gorm:"column:updated_at"`
	UUID      string           `gorm:"column:uuid;type:varchar(36);uniqueIndex;not null;comment:订单唯一标识"`
	UserID    string           `gorm:"column:user_id;type:varchar(64);index;not null;comment:下单用户"`
	StoreID   uint64           `gorm:"column:store_id;not null;index:idx_orders_listing,priority:1;comment:所属店铺"`
	Status    string           `gorm:"column:status;type:varchar(20);index;not null;comment:订单状态"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID"`
	Store     *storeRef        `gorm:"foreignKey:StoreID;->"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单行表
type OrderItemModel struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64      `gorm:"column:order_id;index;not null"`
	ProductID uint64      `gorm:"column:product_id;index;not null"`
	Price     string      `gorm:"column:price;type:decimal(20,2);not null;comment:下单时价格快照"`
	Quantity  int         `gorm:"column:quantity;not null"`
	Product   *productRef `gorm:"foreignKey:ProductID;->"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// storeRef 只读引用目录中的店铺，用于展示店铺代码
type storeRef struct {
	ID   uint64
	Code string
}

func (storeRef) TableName() string { return "stores" }

// productRef 只读引用目录中的商品
type productRef struct {
	ID   uint64
	Code string
	Name string
}

func (productRef) TableName() string { return "products" }

// AutoMigrate 创建订单相关表，需在目录表之后执行
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderModel{}, &OrderItemModel{})
}

func toOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:        o.ID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		UUID:      o.UUID,
		UserID:    o.UserID,
		StoreID:   o.StoreID,
		Status:    string(o.Status),
		Items:     make([]OrderItemModel, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ProductID: item.ProductID,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	return m
}

func toOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:        m.ID,
		UUID:      m.UUID,
		UserID:    m.UserID,
		StoreID:   m.StoreID,
		Status:    domain.OrderStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Items:     make([]*domain.OrderItem, 0, len(m.Items)),
	}
	if m.Store != nil {
		o.StoreCode = m.Store.Code
	}
	for i := range m.Items {
		im := &m.Items[i]
		price, _ := decimal.NewFromString(im.Price)
		item := &domain.OrderItem{
			ID:        im.ID,
			OrderID:   im.OrderID,
			ProductID: im.ProductID,
			Price:     price,
			Quantity:  im.Quantity,
		}
		if im.Product != nil {
			item.ProductCode = im.Product.Code
			item.ProductName = im.Product.Name
		}
		o.Items = append(o.Items, item)
	}
	return o
}
