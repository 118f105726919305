package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/shopfront/pkg/config"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/ratelimit"
	"github.com/wyfcoding/shopfront/pkg/response"
)

// 写请求（加购、下单、改状态）消耗的令牌数
const writeCost = 2

// GinRateLimitMiddleware 按调用方限流，需在 GinIdentityMiddleware 之后注册；限流器故障时放行
func GinRateLimitMiddleware(limiter ratelimit.Limiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		subject := ratelimit.SubjectKey(identity.FromContext(ctx).UserID, c.ClientIP())
		cost := 1
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			cost = writeCost
		}

		d, err := limiter.Allow(ctx, subject, limit, cost)
		if err != nil {
			logger.Warn(ctx, "Rate limiter unavailable", "subject", subject, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(d.ResetAfter/time.Second), 10))

		if !d.Allowed {
			retry := int64(d.RetryAfter / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retry, 10))
			logger.Info(ctx, "Request rate limited", "subject", subject, "path", c.FullPath())
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "Too Many Requests", d.RetryAfter.String())
			c.Abort()
			return
		}

		c.Next()
	}
}
