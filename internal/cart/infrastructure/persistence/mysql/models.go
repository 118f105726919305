package mysql

import (
	"time"

	"github.com/wyfcoding/shopfront/internal/cart/domain"
	"gorm.io/gorm"
)

// CartModel 购物车表
type CartModel struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UUID      string          `gorm:"column:uuid;type:varchar(36);uniqueIndex;not null"`
	StoreID   uint64          `gorm:"column:store_id;index;not null"`
	Items     []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (CartModel) TableName() string { return "carts" }

// CartItemModel 购物车行表，(cart_id, product_in_store_id) 唯一
type CartItemModel struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UUID             string    `gorm:"column:uuid;type:varchar(36);uniqueIndex;not null"`
	CartID           uint64    `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_listing,priority:1"`
	ProductInStoreID uint64    `gorm:"column:product_in_store_id;not null;uniqueIndex:idx_cart_listing,priority:2"`
	Quantity         int       `gorm:"column:quantity;not null;default:0"`
}

func (CartItemModel) TableName() string { return "cart_items" }

// AutoMigrate 创建购物车相关表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CartModel{}, &CartItemModel{})
}

func toCartItem(m *CartItemModel) *domain.CartItem {
	return &domain.CartItem{
		ID:               m.ID,
		UUID:             m.UUID,
		CartID:           m.CartID,
		ProductInStoreID: m.ProductInStoreID,
		Quantity:         m.Quantity,
	}
}

func toCart(m *CartModel) *domain.Cart {
	c := &domain.Cart{
		ID:        m.ID,
		UUID:      m.UUID,
		StoreID:   m.StoreID,
		CreatedAt: m.CreatedAt,
		Items:     make([]*domain.CartItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		c.Items = append(c.Items, toCartItem(&m.Items[i]))
	}
	return c
}
