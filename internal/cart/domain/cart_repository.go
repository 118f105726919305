package domain

import "context"

// CartRepository 购物车仓储，未找到时返回 (nil, nil)
type CartRepository interface {
	Create(ctx context.Context, cart *Cart) error
	// GetInStore 按 uuid 查找购物车及其行，购物车必须属于指定店铺
	GetInStore(ctx context.Context, storeID uint64, uuid string) (*Cart, error)
	// IncrementItem 原子地将对应行数量加一，行不存在时以数量 1 创建
	IncrementItem(ctx context.Context, cartID, productInStoreID uint64) (*CartItem, error)
	// Delete 删除购物车及其行；返回 false 表示购物车已不存在（被并发请求抢先删除）
	Delete(ctx context.Context, cartID uint64) (bool, error)
}
