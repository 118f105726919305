package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/cache"
)

// OrderRedisRepository 订单读缓存
type OrderRedisRepository struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
}

// NewOrderRedisRepository 创建订单缓存
func NewOrderRedisRepository(c *cache.RedisCache) *OrderRedisRepository {
	return &OrderRedisRepository{
		cache:  c,
		prefix: "order:",
		ttl:    15 * time.Minute,
	}
}

// Set 缓存订单
func (r *OrderRedisRepository) Set(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}
	if err := r.cache.SetJSON(ctx, r.key(order.UUID), order, r.ttl); err != nil {
		return fmt.Errorf("failed to cache order: %w", err)
	}
	return nil
}

// Get 读取缓存，未命中返回 (nil, nil)
func (r *OrderRedisRepository) Get(ctx context.Context, uuid string) (*domain.Order, error) {
	if uuid == "" {
		return nil, nil
	}
	var order domain.Order
	found, err := r.cache.GetJSON(ctx, r.key(uuid), &order)
	if err != nil {
		return nil, fmt.Errorf("failed to get order from redis: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &order, nil
}

// Delete 使缓存失效
func (r *OrderRedisRepository) Delete(ctx context.Context, uuid string) error {
	return r.cache.Delete(ctx, r.key(uuid))
}

func (r *OrderRedisRepository) key(uuid string) string {
	return r.prefix + uuid
}
