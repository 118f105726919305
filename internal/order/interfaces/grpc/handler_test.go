package grpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	shopgrpc "github.com/wyfcoding/shopfront/internal/order/interfaces/grpc"
	"github.com/wyfcoding/shopfront/internal/shoptest"
	"github.com/wyfcoding/shopfront/pkg/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*shopgrpc.ShopServiceClient, *shoptest.App) {
	t.Helper()
	app := shoptest.NewApp(t)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.GRPCRecoveryInterceptor(),
		middleware.GRPCIdentityInterceptor(),
	))
	shopgrpc.RegisterShopServiceServer(server, shopgrpc.NewHandler(app.Cart, app.Orders, app.Sessions))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return shopgrpc.NewShopServiceClient(conn), app
}

func as(userID, role string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "x-user-id", userID, "x-user-role", role)
}

func TestShopService_OrderLifecycle(t *testing.T) {
	client, app := startServer(t)
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")
	shopper := as("alice", "shopper")

	added, err := client.AddToCart(shopper, &shopgrpc.AddToCartRequest{StoreCode: "corner", ProductInStoreUUID: mug.UUID})
	require.NoError(t, err)
	require.NotEmpty(t, added.SessionID)
	assert.Equal(t, 1, added.Quantity)

	added, err = client.AddToCart(shopper, &shopgrpc.AddToCartRequest{SessionID: added.SessionID, StoreCode: "corner", ProductInStoreUUID: mug.UUID})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Quantity)

	placed, err := client.PlaceOrder(shopper, &shopgrpc.PlaceOrderRequest{SessionID: added.SessionID, StoreCode: "corner"})
	require.NoError(t, err)
	assert.Equal(t, "Order "+placed.OrderUUID+" created", placed.Message)

	_, err = client.PlaceOrder(shopper, &shopgrpc.PlaceOrderRequest{SessionID: added.SessionID, StoreCode: "corner"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	staff := as("bob", "staff")
	changed, err := client.ChangeOrderStatus(staff, &shopgrpc.ChangeOrderStatusRequest{OrderUUID: placed.OrderUUID, ChangeStatus: "accept"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", changed.Status)

	_, err = client.ChangeOrderStatus(shopper, &shopgrpc.ChangeOrderStatusRequest{OrderUUID: placed.OrderUUID, ChangeStatus: "ship"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.ChangeOrderStatus(staff, &shopgrpc.ChangeOrderStatusRequest{OrderUUID: placed.OrderUUID, ChangeStatus: "close"})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "Order "+placed.OrderUUID+" cannot be closed", st.Message())

	_, err = client.ChangeOrderStatus(staff, &shopgrpc.ChangeOrderStatusRequest{OrderUUID: placed.OrderUUID, ChangeStatus: "refund"})
	st, _ = status.FromError(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "Status refund is not an allowed value", st.Message())

	list, err := client.ListOrders(staff, &shopgrpc.ListOrdersRequest{StoreCode: "corner"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "50.00", list.Orders[0].TotalPrice)
	assert.Equal(t, "accepted", list.Orders[0].Status)
	require.Len(t, list.Orders[0].Items, 1)
	assert.Equal(t, 2, list.Orders[0].Items[0].Quantity)
}

func TestShopService_Validation(t *testing.T) {
	client, app := startServer(t)
	app.SeedStore(t, "corner")

	_, err := client.PlaceOrder(as("alice", "shopper"), &shopgrpc.PlaceOrderRequest{StoreCode: "corner"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddToCart(as("alice", "shopper"), &shopgrpc.AddToCartRequest{StoreCode: "nowhere", ProductInStoreUUID: "x"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ChangeOrderStatus(as("bob", "staff"), &shopgrpc.ChangeOrderStatusRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ListOrders(as("alice", "shopper"), &shopgrpc.ListOrdersRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
