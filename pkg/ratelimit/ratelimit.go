// Package ratelimit 基于 Redis GCRA 的分布式限流
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Limit 限流规则：每 Period 允许 Rate 次，瞬时最多 Burst 次
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// PerSecond 每秒 rate 次的规则
func PerSecond(rate, burst int) Limit {
	return Limit{Rate: rate, Period: time.Second, Burst: burst}
}

// Decision 单次限流判定
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// Limiter 限流器
type Limiter interface {
	// Allow 为 subject 消耗 cost 个令牌
	Allow(ctx context.Context, subject string, limit Limit, cost int) (*Decision, error)
}

// SubjectKey 已登录调用方按用户限流，匿名调用方按 IP
func SubjectKey(userID, clientIP string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "ip:" + clientIP
}

// RedisLimiter 使用 redis_rate 实现 Limiter
type RedisLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisLimiter 创建 RedisLimiter
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

func (r *RedisLimiter) Allow(ctx context.Context, subject string, limit Limit, cost int) (*Decision, error) {
	if cost <= 0 {
		cost = 1
	}
	res, err := r.limiter.AllowN(ctx, keyPrefix+subject, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	}, cost)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Decision{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
