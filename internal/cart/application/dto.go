package application

import (
	"github.com/shopspring/decimal"
	catalogdomain "github.com/wyfcoding/shopfront/internal/catalog/domain"
)

// AddToCartResult 加入购物车结果
type AddToCartResult struct {
	StoreCode string `json:"store_code"`
	CartUUID  string `json:"cart_uuid"`
	Quantity  int    `json:"quantity"`
}

// CartLine 购物车行视图
type CartLine struct {
	UUID               string `json:"uuid"`
	ProductInStoreUUID string `json:"product_in_store_uuid"`
	ProductCode        string `json:"product_code"`
	ProductName        string `json:"product_name"`
	Price              string `json:"price"`
	Quantity           int    `json:"quantity"`
	TotalPrice         string `json:"total_price"`
}

// CartView 购物车视图，会话中没有购物车时 Items 为空且总价为 0
type CartView struct {
	StoreCode      string     `json:"store_code"`
	CartUUID       string     `json:"cart_uuid,omitempty"`
	Items          []CartLine `json:"items"`
	TotalCartPrice string     `json:"total_cart_price"`
}

// StorefrontItem 店铺商品及其在购物车中的数量
type StorefrontItem struct {
	UUID        string `json:"uuid"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	InCart      int    `json:"in_cart"`
}

// StorefrontView 店铺首页视图
type StorefrontView struct {
	StoreCode string           `json:"store_code"`
	StoreName string           `json:"store_name"`
	Products  []StorefrontItem `json:"products"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func productCodeAndName(l *catalogdomain.ProductInStore) (string, string) {
	if l.Product == nil {
		return "", ""
	}
	return l.Product.Code, l.Product.Name
}
