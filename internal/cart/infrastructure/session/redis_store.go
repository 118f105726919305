// Package session 提供基于 Redis Hash 的购物会话存储
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/shopfront/internal/cart/domain"
)

const keyPrefix = "session:"

// RedisStore 会话存储，每个会话一个 Hash：field 为店铺代码，value 为购物车 uuid
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建会话存储
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewSessionID 生成新的会话 ID
func NewSessionID() string {
	return uuid.NewString()
}

// Open 打开指定会话
func (s *RedisStore) Open(sessionID string) domain.Session {
	return &redisSession{store: s, key: keyPrefix + sessionID}
}

type redisSession struct {
	store *RedisStore
	key   string
}

func (s *redisSession) CartFor(ctx context.Context, storeCode string) (string, bool, error) {
	val, err := s.store.client.HGet(ctx, s.key, storeCode).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	return val, val != "", nil
}

func (s *redisSession) SetCart(ctx context.Context, storeCode, cartUUID string) error {
	pipe := s.store.client.TxPipeline()
	pipe.HSet(ctx, s.key, storeCode, cartUUID)
	if s.store.ttl > 0 {
		pipe.Expire(ctx, s.key, s.store.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *redisSession) ClearCart(ctx context.Context, storeCode string) error {
	if err := s.store.client.HDel(ctx, s.key, storeCode).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

type sessionKey struct{}

// WithSession 将会话写入 context
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext 取出会话
func FromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok && s != nil
}
