package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cataloghttp "github.com/wyfcoding/shopfront/internal/catalog/interfaces/http"
	"github.com/wyfcoding/shopfront/internal/shoptest"
	"github.com/wyfcoding/shopfront/pkg/middleware"
	"github.com/wyfcoding/shopfront/pkg/response"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := shoptest.NewApp(t)
	router := gin.New()
	router.Use(middleware.GinIdentityMiddleware())
	cataloghttp.NewCatalogHandler(app.Catalog).RegisterRoutes(router)
	return router
}

func call(t *testing.T, r *gin.Engine, role, method, target, body string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "bob")
	req.Header.Set(middleware.HeaderUserRole, role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestCatalogHandler(t *testing.T) {
	r := newRouter(t)

	code, _ := call(t, r, "staff", http.MethodPost, "/api/v1/stores", `{"code":"corner","name":"Corner shop"}`)
	require.Equal(t, http.StatusCreated, code)

	code, resp := call(t, r, "staff", http.MethodPost, "/api/v1/stores", `{"code":"corner","name":"Again"}`)
	assert.Equal(t, http.StatusBadRequest, code, resp.Message)

	code, _ = call(t, r, "staff", http.MethodPost, "/api/v1/products", `{"code":"mug","name":"Mug"}`)
	require.Equal(t, http.StatusCreated, code)

	code, resp = call(t, r, "staff", http.MethodPost, "/api/v1/stores/corner/products", `{"product_code":"mug","price":"12.5"}`)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.Equal(t, "12.50", resp.Data.(map[string]any)["price"])

	code, _ = call(t, r, "staff", http.MethodPost, "/api/v1/stores/corner/products", `{"product_code":"mug","price":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = call(t, r, "shopper", http.MethodGet, "/api/v1/stores/corner/products", "")
	require.Equal(t, http.StatusOK, code)
	listings := resp.Data.([]any)
	require.Len(t, listings, 1)
	assert.Equal(t, "mug", listings[0].(map[string]any)["product_code"])

	code, resp = call(t, r, "shopper", http.MethodGet, "/api/v1/stores/nowhere/products", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Shop nowhere does not exist", resp.Message)
}

func TestCatalogHandler_StaffOnlyWrites(t *testing.T) {
	r := newRouter(t)

	for _, target := range []string{"/api/v1/stores", "/api/v1/products", "/api/v1/stores/corner/products"} {
		code, _ := call(t, r, "shopper", http.MethodPost, target, `{}`)
		assert.Equal(t, http.StatusForbidden, code, target)
	}

	code, _ := call(t, r, "staff", http.MethodPost, "/api/v1/stores", `{"code":"corner"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
