package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/shopfront/internal/catalog/application"
	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/identity"
	"github.com/wyfcoding/shopfront/pkg/response"
)

// CatalogHandler 店铺与商品主数据的 HTTP 处理器，仅员工可写
type CatalogHandler struct {
	service *application.CatalogApplicationService
}

// NewCatalogHandler 创建 HTTP 处理器实例
func NewCatalogHandler(service *application.CatalogApplicationService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.POST("/stores", h.CreateStore)
		api.POST("/products", h.CreateProduct)
		api.POST("/stores/:store_code/products", h.ListProduct)
		api.GET("/stores/:store_code/products", h.ListStoreProducts)
	}
}

// CreateStoreRequest 创建店铺请求
type CreateStoreRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ListProductRequest 商品上架请求，价格使用字符串避免精度损失
type ListProductRequest struct {
	ProductCode string `json:"product_code" binding:"required"`
	Price       string `json:"price" binding:"required"`
}

// ListingResponse 店铺商品
type ListingResponse struct {
	UUID        string `json:"uuid"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
}

func (h *CatalogHandler) CreateStore(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	store, err := h.service.CreateStore(c.Request.Context(), application.CreateStoreCommand{Code: req.Code, Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "success", gin.H{"code": store.Code, "name": store.Name})
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), application.CreateProductCommand{Code: req.Code, Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "success", gin.H{"code": product.Code, "name": product.Name})
}

func (h *CatalogHandler) ListProduct(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	var req ListProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", req.Price)
		return
	}
	listing, err := h.service.ListProduct(c.Request.Context(), application.ListProductCommand{
		StoreCode:   c.Param("store_code"),
		ProductCode: req.ProductCode,
		Price:       price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "success", toListingResponse(listing))
}

func (h *CatalogHandler) ListStoreProducts(c *gin.Context) {
	ctx := c.Request.Context()
	store, err := h.service.GetStore(ctx, c.Param("store_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	listings, err := h.service.ListStoreProducts(ctx, store.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	response.Success(c, out)
}

func requireStaff(c *gin.Context) bool {
	if identity.FromContext(c.Request.Context()).IsStaff() {
		return true
	}
	response.ErrorWithStatus(c, http.StatusForbidden, "Only store staff can manage master data", "forbidden")
	return false
}

func toListingResponse(l *domain.ProductInStore) ListingResponse {
	resp := ListingResponse{UUID: l.UUID, Price: l.Price.StringFixed(2)}
	if l.Product != nil {
		resp.ProductCode = l.Product.Code
		resp.ProductName = l.Product.Name
	}
	return resp
}
