package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	// ServiceName 完整服务名
	ServiceName = "shop.v1.ShopService"

	MethodAddToCart         = "/" + ServiceName + "/AddToCart"
	MethodPlaceOrder        = "/" + ServiceName + "/PlaceOrder"
	MethodChangeOrderStatus = "/" + ServiceName + "/ChangeOrderStatus"
	MethodListOrders        = "/" + ServiceName + "/ListOrders"
)

// AddToCartRequest 加入购物车；SessionID 为空时服务端签发新会话
type AddToCartRequest struct {
	SessionID          string `json:"session_id"`
	StoreCode          string `json:"store_code"`
	ProductInStoreUUID string `json:"product_in_store_uuid"`
}

type AddToCartResponse struct {
	SessionID string `json:"session_id"`
	CartUUID  string `json:"cart_uuid"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	SessionID string `json:"session_id"`
	StoreCode string `json:"store_code"`
}

type PlaceOrderResponse struct {
	OrderUUID string `json:"order_uuid"`
	Message   string `json:"message"`
}

type ChangeOrderStatusRequest struct {
	OrderUUID    string `json:"order_uuid"`
	ChangeStatus string `json:"change_status"`
}

type ChangeOrderStatusResponse struct {
	OrderUUID string `json:"order_uuid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// ListOrdersRequest 员工订单列表，StoreCode 为空时返回全部店铺
type ListOrdersRequest struct {
	StoreCode string `json:"store_code"`
}

type OrderItem struct {
	ProductCode string `json:"product_code"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

type Order struct {
	UUID       string      `json:"uuid"`
	UserID     string      `json:"user_id"`
	StoreCode  string      `json:"store_code"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalPrice string      `json:"total_price"`
	CreatedAt  int64       `json:"created_at"`
	UpdatedAt  int64       `json:"updated_at"`
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
}

// ShopServiceServer 服务端接口
type ShopServiceServer interface {
	AddToCart(context.Context, *AddToCartRequest) (*AddToCartResponse, error)
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
	ChangeOrderStatus(context.Context, *ChangeOrderStatusRequest) (*ChangeOrderStatusResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
}

// RegisterShopServiceServer 注册服务
func RegisterShopServiceServer(s grpc.ServiceRegistrar, srv ShopServiceServer) {
	s.RegisterService(&ShopServiceDesc, srv)
}

// ShopServiceDesc 服务描述，请求与响应使用 JSON 编解码
var ShopServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShopServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddToCart", Handler: addToCartHandler},
		{MethodName: "PlaceOrder", Handler: placeOrderHandler},
		{MethodName: "ChangeOrderStatus", Handler: changeOrderStatusHandler},
		{MethodName: "ListOrders", Handler: listOrdersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/shop.proto",
}

func addToCartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AddToCartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopServiceServer).AddToCart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodAddToCart}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShopServiceServer).AddToCart(ctx, req.(*AddToCartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func placeOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PlaceOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopServiceServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodPlaceOrder}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShopServiceServer).PlaceOrder(ctx, req.(*PlaceOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func changeOrderStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ChangeOrderStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopServiceServer).ChangeOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodChangeOrderStatus}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShopServiceServer).ChangeOrderStatus(ctx, req.(*ChangeOrderStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listOrdersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShopServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListOrders}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShopServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ShopServiceClient 客户端
type ShopServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewShopServiceClient 创建客户端，所有调用固定使用 JSON 编解码
func NewShopServiceClient(cc grpc.ClientConnInterface) *ShopServiceClient {
	return &ShopServiceClient{cc: cc}
}

func (c *ShopServiceClient) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*AddToCartResponse, error) {
	out := new(AddToCartResponse)
	if err := c.invoke(ctx, MethodAddToCart, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShopServiceClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*PlaceOrderResponse, error) {
	out := new(PlaceOrderResponse)
	if err := c.invoke(ctx, MethodPlaceOrder, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShopServiceClient) ChangeOrderStatus(ctx context.Context, in *ChangeOrderStatusRequest, opts ...grpc.CallOption) (*ChangeOrderStatusResponse, error) {
	out := new(ChangeOrderStatusResponse)
	if err := c.invoke(ctx, MethodChangeOrderStatus, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShopServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, MethodListOrders, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShopServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
