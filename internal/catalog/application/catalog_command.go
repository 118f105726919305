package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/db"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

// CreateStoreCommand 创建店铺命令
type CreateStoreCommand struct {
	Code string
	Name string
}

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Code string
	Name string
}

// ListProductCommand 商品上架命令
type ListProductCommand struct {
	StoreCode   string
	ProductCode string
	Price       decimal.Decimal
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	stores    domain.StoreRepository
	products  domain.ProductRepository
	listings  domain.ListingRepository
	publisher domain.EventPublisher
	tx        db.Transactor
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(
	stores domain.StoreRepository,
	products domain.ProductRepository,
	listings domain.ListingRepository,
	publisher domain.EventPublisher,
	tx db.Transactor,
) *CatalogCommandService {
	return &CatalogCommandService{
		stores:    stores,
		products:  products,
		listings:  listings,
		publisher: publisher,
		tx:        tx,
	}
}

// CreateStore 创建店铺，代码与名称均唯一
func (s *CatalogCommandService) CreateStore(ctx context.Context, cmd CreateStoreCommand) (*domain.Store, error) {
	store, err := domain.NewStore(cmd.Code, cmd.Name)
	if err != nil {
		return nil, bizerr.Validation("invalid_store", err.Error())
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.stores.GetByCode(txCtx, cmd.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return bizerr.Validation("store_code_taken", "Store with code "+cmd.Code+" already exists")
		}
		existing, err = s.stores.GetByName(txCtx, cmd.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return bizerr.Validation("store_name_taken", "Store with name "+cmd.Name+" already exists")
		}
		if err := s.stores.Save(txCtx, store); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicStoreCreated, store.Code, domain.StoreCreatedEvent{
			StoreID:   store.ID,
			Code:      store.Code,
			Name:      store.Name,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, bizerr.Wrap(err)
	}

	logger.Info(ctx, "Store created", "code", store.Code, "store_id", store.ID)
	return store, nil
}

// CreateProduct 创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Code == "" || cmd.Name == "" {
		return nil, bizerr.Validation("invalid_product", "Product code and name are required")
	}
	product := &domain.Product{Code: cmd.Code, Name: cmd.Name}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.products.GetByCode(txCtx, cmd.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return bizerr.Validation("product_code_taken", "Product with code "+cmd.Code+" already exists")
		}
		if err := s.products.Save(txCtx, product); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductCreated, product.Code, domain.ProductCreatedEvent{
			ProductID: product.ID,
			Code:      product.Code,
			Name:      product.Name,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, bizerr.Wrap(err)
	}
	return product, nil
}

// ListProduct 将商品以指定价格上架到店铺，同一店铺同一商品只能上架一次
func (s *CatalogCommandService) ListProduct(ctx context.Context, cmd ListProductCommand) (*domain.ProductInStore, error) {
	var listing *domain.ProductInStore

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		store, err := s.stores.GetByCode(txCtx, cmd.StoreCode)
		if err != nil {
			return err
		}
		if store == nil {
			return bizerr.NotFound("store_not_found", "Shop %s does not exist", cmd.StoreCode)
		}
		product, err := s.products.GetByCode(txCtx, cmd.ProductCode)
		if err != nil {
			return err
		}
		if product == nil {
			return bizerr.NotFound("product_not_found", "Product %s does not exist", cmd.ProductCode)
		}
		existing, err := s.listings.GetByStoreAndProduct(txCtx, store.ID, product.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return bizerr.Validation("product_already_listed", "Product "+product.Code+" is already listed in "+store.Code)
		}

		listing, err = domain.NewProductInStore(uuid.NewString(), store.ID, product.ID, cmd.Price)
		if err != nil {
			return bizerr.Validation("invalid_price", err.Error())
		}
		listing.Product = product
		if err := s.listings.Save(txCtx, listing); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductListed, listing.UUID, domain.ProductListedEvent{
			UUID:      listing.UUID,
			StoreCode: store.Code,
			Product:   product.Code,
			Price:     listing.Price.StringFixed(2),
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, bizerr.Wrap(err)
	}
	return listing, nil
}
