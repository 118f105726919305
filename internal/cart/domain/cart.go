package domain

import "time"

// Cart 购物者在某个店铺下的购物车，下单时整体删除
type Cart struct {
	ID        uint64
	UUID      string
	StoreID   uint64
	Items     []*CartItem
	CreatedAt time.Time
}

// CartItem 购物车行，同一购物车内每个店铺商品只有一行
type CartItem struct {
	ID               uint64
	UUID             string
	CartID           uint64
	ProductInStoreID uint64
	Quantity         int
}

// NewCart 创建空购物车
func NewCart(uuid string, storeID uint64) *Cart {
	return &Cart{UUID: uuid, StoreID: storeID}
}

// IsEmpty 是否没有任何行
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// QuantityOf 返回某个店铺商品在购物车中的数量
func (c *Cart) QuantityOf(productInStoreID uint64) int {
	for _, item := range c.Items {
		if item.ProductInStoreID == productInStoreID {
			return item.Quantity
		}
	}
	return 0
}

// ProductInStoreIDs 购物车引用的全部店铺商品
func (c *Cart) ProductInStoreIDs() []uint64 {
	ids := make([]uint64, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductInStoreID)
	}
	return ids
}
