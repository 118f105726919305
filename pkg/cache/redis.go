// Package cache 封装 Redis 连接，提供 JSON 读写；会话、限流与订单读缓存共用同一个客户端
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Config Redis 配置，时间单位为秒
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	MaxPoolSize  int
	ConnTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// Addr host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:            c.Addr(),
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.MaxPoolSize,
		ConnMaxIdleTime: time.Duration(c.ConnTimeout) * time.Second,
		ReadTimeout:     time.Duration(c.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(c.WriteTimeout) * time.Second,
	}
}

// RedisCache Redis 客户端包装
type RedisCache struct {
	client *redis.Client
}

// New 建立连接，启动阶段 Redis 不可用直接返回错误
func New(cfg Config) (*RedisCache, error) {
	rc := NewFromClient(redis.NewClient(cfg.options()))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.client.Close()
		return nil, err
	}

	logger.Info(ctx, "Redis connected", "addr", cfg.Addr(), "db", cfg.DB)
	return rc, nil
}

// NewFromClient 包装已有客户端，测试中配合 miniredis 使用
func NewFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Ping 检查连通性
func (rc *RedisCache) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", rc.client.Options().Addr, err)
	}
	return nil
}

// GetJSON 读取并反序列化到 dest；key 不存在时返回 false
func (rc *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := rc.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		logger.Warn(ctx, "Redis get failed", "key", key, "error", err)
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 序列化后写入，ttl 为 0 表示不过期
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := rc.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Warn(ctx, "Redis set failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete 删除 key，不存在的 key 忽略
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "Redis delete failed", "keys", keys, "error", err)
		return err
	}
	return nil
}

// Close 关闭连接池
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// GetClient 底层客户端，供会话存储与限流器使用
func (rc *RedisCache) GetClient() *redis.Client {
	return rc.client
}
