package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/shopfront/internal/cart/application"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/response"
)

// CartHandler 店铺首页与购物车的 HTTP 处理器
type CartHandler struct {
	service *application.CartApplicationService
}

// NewCartHandler 创建 HTTP 处理器实例
func NewCartHandler(service *application.CartApplicationService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes 注册路由，router 需已挂载 SessionMiddleware
func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	store := router.Group("/shop/:store_code")
	{
		store.GET("", h.Storefront)
		store.GET("/cart", h.GetCart)
		store.POST("/cart/items/:product_uuid", h.AddToCart)
	}
}

// Storefront 店铺首页：上架商品及购物车内数量
func (h *CartHandler) Storefront(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session unavailable", "")
		return
	}
	view, err := h.service.GetStorefront(c.Request.Context(), c.Param("store_code"), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// GetCart 购物车详情
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session unavailable", "")
		return
	}
	view, err := h.service.GetCart(c.Request.Context(), c.Param("store_code"), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddToCart 商品数量加一后重定向回店铺首页
func (h *CartHandler) AddToCart(c *gin.Context) {
	ctx := c.Request.Context()
	sess, ok := session.FromContext(ctx)
	if !ok {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session unavailable", "")
		return
	}
	result, err := h.service.AddToCart(ctx, application.AddToCartCommand{
		StoreCode:          c.Param("store_code"),
		ProductInStoreUUID: c.Param("product_uuid"),
		UserID:             identity.FromContext(ctx).UserID,
		Session:            sess,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Cart-UUID", result.CartUUID)
	c.Redirect(http.StatusSeeOther, "/shop/"+result.StoreCode)
}
