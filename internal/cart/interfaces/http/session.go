package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/shopfront/internal/cart/domain"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
)

// HeaderSessionID 非浏览器客户端使用的会话头
const HeaderSessionID = "X-Session-ID"

// SessionOpener 按会话 ID 打开会话
type SessionOpener interface {
	Open(sessionID string) domain.Session
}

// SessionMiddleware 解析会话 ID（请求头优先，其次 Cookie），缺失时签发新会话
func SessionMiddleware(opener SessionOpener, cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(HeaderSessionID)
		if sessionID == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				sessionID = cookie
			}
		}
		if sessionID == "" {
			sessionID = session.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sessionID, int(ttl.Seconds()), "/", "", false, true)
		}
		c.Header(HeaderSessionID, sessionID)

		ctx := session.WithSession(c.Request.Context(), opener.Open(sessionID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
