package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StoreCodeMaxLen 店铺代码最大长度
	StoreCodeMaxLen = 15
	// StoreNameMaxLen 店铺名称最大长度
	StoreNameMaxLen = 40
)

var storeCodePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Store 店铺
type Store struct {
	ID        uint64
	Code      string
	Name      string
	CreatedAt time.Time
}

// NewStore 校验代码与名称后创建店铺
func NewStore(code, name string) (*Store, error) {
	if !storeCodePattern.MatchString(code) {
		return nil, fmt.Errorf("store code %q must match %s", code, storeCodePattern.String())
	}
	if len(code) > StoreCodeMaxLen {
		return nil, fmt.Errorf("store code %q is longer than %d characters", code, StoreCodeMaxLen)
	}
	if name == "" || len([]rune(name)) > StoreNameMaxLen {
		return nil, fmt.Errorf("store name must be 1-%d characters", StoreNameMaxLen)
	}
	return &Store{Code: code, Name: name}, nil
}

// Product 商品
type Product struct {
	ID   uint64
	Code string
	Name string
}

// ProductInStore 店铺上架的商品及其售价
type ProductInStore struct {
	ID        uint64
	UUID      string
	StoreID   uint64
	ProductID uint64
	Price     decimal.Decimal

	// 读取时一并加载
	Product *Product
}

// NewProductInStore 上架商品，价格不能为负
func NewProductInStore(uuid string, storeID, productID uint64, price decimal.Decimal) (*ProductInStore, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative: %s", price.StringFixed(2))
	}
	return &ProductInStore{
		UUID:      uuid,
		StoreID:   storeID,
		ProductID: productID,
		Price:     price,
	}, nil
}
