package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/shopfront/internal/cart/infrastructure/session"
	"github.com/wyfcoding/shopfront/internal/order/application"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/logger"
	"github.com/wyfcoding/shopfront/pkg/response"
)

// OrderHandler HTTP 处理器
// 负责下单、订单查询与员工推进订单状态
type OrderHandler struct {
	service *application.OrderService
}

// 创建 HTTP 处理器实例
func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// 注册路由；下单路由依赖 SessionMiddleware
func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	shop := router.Group("/shop/:store_code")
	{
		shop.POST("/orders", h.PlaceOrder)        // 购物车下单
		shop.GET("/orders", h.ListCustomerOrders) // 我的订单
	}

	api := router.Group("/api/v1/orders")
	{
		api.GET("", h.ListOrders)               // 员工订单列表
		api.GET("/:id", h.GetOrder)             // 获取订单详情
		api.POST("/:id/status", h.ChangeStatus) // 推进订单状态
	}
}

// ChangeStatusRequest 状态变更请求
type ChangeStatusRequest struct {
	ChangeStatus string `json:"change_status" form:"change_status"`
}

// PlaceOrder 将当前店铺的购物车转换为订单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	ctx := c.Request.Context()
	sess, ok := session.FromContext(ctx)
	if !ok {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session unavailable", "")
		return
	}

	result, err := h.service.PlaceOrder(ctx, application.PlaceOrderCommand{
		Actor:     identity.FromContext(ctx),
		StoreCode: c.Param("store_code"),
		Session:   sess,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, result.Message, result)
}

// ListCustomerOrders 当前用户在该店铺的订单
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.service.ListCustomerOrders(ctx, identity.FromContext(ctx), c.Param("store_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}

// ListOrders 员工查看全部订单，可用 store 参数限定店铺
func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.service.ListOrders(ctx, identity.FromContext(ctx), c.Query("store"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 获取订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()
	dto, err := h.service.GetOrder(ctx, identity.FromContext(ctx), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ChangeStatus 推进订单状态，请求体缺失 change_status 时交由网关返回校验错误
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()
	var req ChangeStatusRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
	}

	actor := identity.FromContext(ctx)
	result, err := h.service.ChangeStatus(ctx, actor, c.Param("id"), req.ChangeStatus)
	if err != nil {
		if application.IsTransitionRejected(err) {
			logger.Info(ctx, "Order status change rejected", "order_uuid", c.Param("id"), "event", req.ChangeStatus, "actor_id", actor.UserID)
		}
		response.Error(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusOK, result.Message, result)
}
