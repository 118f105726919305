package application

import (
	"context"

	"github.com/wyfcoding/shopfront/internal/cart/domain"
)

// CartApplicationService 购物车服务门面，整合命令服务和查询服务
type CartApplicationService struct {
	commandService *CartCommandService
	queryService   *CartQueryService
}

// NewCartApplicationService 创建购物车服务门面实例
func NewCartApplicationService(cmd *CartCommandService, query *CartQueryService) *CartApplicationService {
	return &CartApplicationService{
		commandService: cmd,
		queryService:   query,
	}
}

// AddToCart 加入购物车
func (s *CartApplicationService) AddToCart(ctx context.Context, cmd AddToCartCommand) (*AddToCartResult, error) {
	return s.commandService.AddToCart(ctx, cmd)
}

// GetCart 查看购物车
func (s *CartApplicationService) GetCart(ctx context.Context, storeCode string, session domain.Session) (*CartView, error) {
	return s.queryService.GetCart(ctx, storeCode, session)
}

// GetStorefront 店铺首页
func (s *CartApplicationService) GetStorefront(ctx context.Context, storeCode string, session domain.Session) (*StorefrontView, error) {
	return s.queryService.GetStorefront(ctx, storeCode, session)
}
