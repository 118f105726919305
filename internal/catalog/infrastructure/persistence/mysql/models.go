package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"gorm.io/gorm"
)

// StoreModel 店铺表
type StoreModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Code      string    `gorm:"column:code;type:varchar(15);uniqueIndex;not null;comment:店铺代码"`
	Name      string    `gorm:"column:name;type:varchar(40);uniqueIndex;not null;comment:店铺名称"`
}

func (StoreModel) TableName() string { return "stores" }

// ProductModel 商品表
type ProductModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Code      string    `gorm:"column:code;type:varchar(32);uniqueIndex;not null;comment:商品代码"`
	Name      string    `gorm:"column:name;type:varchar(128);not null;comment:商品名称"`
}

func (ProductModel) TableName() string { return "products" }

// ProductInStoreModel 店铺商品表，(store_id, product_id) 唯一
type ProductInStoreModel struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time     `gorm:"column:created_at"`
	UUID      string        `gorm:"column:uuid;type:varchar(36);uniqueIndex;not null"`
	StoreID   uint64        `gorm:"column:store_id;not null;uniqueIndex:idx_store_product,priority:1"`
	ProductID uint64        `gorm:"column:product_id;not null;uniqueIndex:idx_store_product,priority:2"`
	Price     string        `gorm:"column:price;type:decimal(20,2);not null;comment:售价"`
	Store     *StoreModel   `gorm:"foreignKey:StoreID"`
	Product   *ProductModel `gorm:"foreignKey:ProductID"`
}

func (ProductInStoreModel) TableName() string { return "product_in_store" }

// AutoMigrate 创建目录相关表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&StoreModel{}, &ProductModel{}, &ProductInStoreModel{})
}

func toStore(m *StoreModel) *domain.Store {
	return &domain.Store{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func toProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:   m.ID,
		Code: m.Code,
		Name: m.Name,
	}
}

func toListing(m *ProductInStoreModel) *domain.ProductInStore {
	price, _ := decimal.NewFromString(m.Price)
	l := &domain.ProductInStore{
		ID:        m.ID,
		UUID:      m.UUID,
		StoreID:   m.StoreID,
		ProductID: m.ProductID,
		Price:     price,
	}
	if m.Product != nil {
		l.Product = toProduct(m.Product)
	}
	return l
}
