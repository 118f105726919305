package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	carthttp "github.com/wyfcoding/shopfront/internal/cart/interfaces/http"
	orderhttp "github.com/wyfcoding/shopfront/internal/order/interfaces/http"
	"github.com/wyfcoding/shopfront/internal/shoptest"
	"github.com/wyfcoding/shopfront/pkg/middleware"
	"github.com/wyfcoding/shopfront/pkg/response"
)

type client struct {
	t      *testing.T
	router *gin.Engine
}

func newClient(t *testing.T) (*client, *shoptest.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := shoptest.NewApp(t)

	router := gin.New()
	router.Use(middleware.GinIdentityMiddleware())
	shop := router.Group("", carthttp.SessionMiddleware(app.Sessions, "shop_session", time.Hour))
	carthttp.NewCartHandler(app.Cart).RegisterRoutes(shop)
	orderhttp.NewOrderHandler(app.Orders).RegisterRoutes(shop)
	return &client{t: t, router: router}, app
}

type caller struct {
	session string
	userID  string
	role    string
}

func (c *client) do(who caller, method, target, contentType, body string) (*httptest.ResponseRecorder, response.Response) {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	}
	if who.session != "" {
		req.Header.Set(carthttp.HeaderSessionID, who.session)
	}
	if who.userID != "" {
		req.Header.Set(middleware.HeaderUserID, who.userID)
	}
	if who.role != "" {
		req.Header.Set(middleware.HeaderUserRole, who.role)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var resp response.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

var (
	alice = caller{session: "sess-alice", userID: "alice"}
	bob   = caller{userID: "bob", role: "staff"}
)

func TestPlaceOrderFlow(t *testing.T) {
	c, app := newClient(t)
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")

	w, _ := c.do(alice, http.MethodPost, "/shop/corner/cart/items/"+mug.UUID, "", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/shop/corner", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("X-Cart-UUID"))
	assert.Equal(t, "sess-alice", w.Header().Get(carthttp.HeaderSessionID))

	w, resp := c.do(alice, http.MethodPost, "/shop/corner/orders", "", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := resp.Data.(map[string]any)
	orderUUID := data["order_uuid"].(string)
	assert.Equal(t, "Order "+orderUUID+" created", resp.Message)

	// 购物车已转换为订单，再次下单没有可下单的商品
	w, resp = c.do(alice, http.MethodPost, "/shop/corner/orders", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "No items in cart to order", resp.Message)

	w, resp = c.do(alice, http.MethodGet, "/shop/corner/orders", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]any), 1)

	w, resp = c.do(alice, http.MethodGet, "/api/v1/orders/"+orderUUID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	order := resp.Data.(map[string]any)
	assert.Equal(t, "placed", order["status"])
	assert.Equal(t, "25.00", order["total_price"])
}

func TestPlaceOrder_Errors(t *testing.T) {
	c, app := newClient(t)
	app.SeedStore(t, "corner")

	w, resp := c.do(alice, http.MethodPost, "/shop/nowhere/orders", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Shop nowhere does not exist", resp.Message)

	w, _ = c.do(caller{session: "anon"}, http.MethodPost, "/shop/corner/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = c.do(alice, http.MethodPost, "/shop/corner/cart/items/no-such-listing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionCookieIssued(t *testing.T) {
	c, app := newClient(t)
	app.SeedStore(t, "corner")

	w, _ := c.do(caller{userID: "alice"}, http.MethodGet, "/shop/corner", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(carthttp.HeaderSessionID))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "shop_session=")
}

func TestChangeStatus(t *testing.T) {
	c, app := newClient(t)
	app.SeedStore(t, "corner")
	mug := app.SeedListing(t, "corner", "mug", "25.00")
	c.do(alice, http.MethodPost, "/shop/corner/cart/items/"+mug.UUID, "", "")
	_, resp := c.do(alice, http.MethodPost, "/shop/corner/orders", "", "")
	orderUUID := resp.Data.(map[string]any)["order_uuid"].(string)
	target := "/api/v1/orders/" + orderUUID + "/status"

	t.Run("shopper forbidden", func(t *testing.T) {
		w, _ := c.do(alice, http.MethodPost, target, "application/json", `{"change_status":"accept"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing change_status", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodPost, target, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Order id and change_status has to be filled", resp.Message)
	})

	t.Run("unknown value", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodPost, target, "application/json", `{"change_status":"teleport"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Status teleport is not an allowed value", resp.Message)
	})

	t.Run("unknown order", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodPost, "/api/v1/orders/missing/status", "application/json", `{"change_status":"accept"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Order missing does not exist", resp.Message)
	})

	t.Run("json then form", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodPost, target, "application/json", `{"change_status":"accept"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Status of order "+orderUUID+" updated to accepted", resp.Message)

		form := url.Values{"change_status": {"ship"}}.Encode()
		w, resp = c.do(bob, http.MethodPost, target, "application/x-www-form-urlencoded", form)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "shipped", resp.Data.(map[string]any)["status"])
	})

	t.Run("illegal transition", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodPost, target, "application/json", `{"change_status":"close"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Order "+orderUUID+" cannot be closed", resp.Message)
	})

	t.Run("staff list", func(t *testing.T) {
		w, resp := c.do(bob, http.MethodGet, "/api/v1/orders?store=corner", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data.([]any), 1)

		w, _ = c.do(alice, http.MethodGet, "/api/v1/orders", "", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
