package http_test

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/data/graph/graphtest"
	shophttp "github.com/yungbote/shopgraph/internal/http"
	httpH "github.com/yungbote/shopgraph/internal/http/handlers"
	"github.com/yungbote/shopgraph/internal/recommend"
)

func newRouter(t *testing.T, store *graph.MemoryStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return shophttp.NewRouter(shophttp.RouterConfig{
		HealthHandler:         httpH.NewHealthHandler(store),
		CatalogHandler:        httpH.NewCatalogHandler(nil, store),
		RecommendationHandler: httpH.NewRecommendationHandler(nil, recommend.NewEngine(store, recommend.DefaultConfig(), nil)),
		DisableMetrics:        true,
	})
}

func get(t *testing.T, r *gin.Engine, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body=%s", rec.Body.String())
	return rec.Code, body
}

func productIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["recommendations"].([]any)
	require.True(t, ok, "recommendations missing: %v", body)
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, item.(map[string]any)["product_id"].(string))
	}
	return ids
}

func TestRecommendationRoutes(t *testing.T) {
	r := newRouter(t, graphtest.Scenario(t).Store())

	code, body := get(t, r, "/recommendations/collaborative/C1")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, "C1", body["customer_id"])
	assert.Equal(t, "collaborative_filtering", body["strategy"])
	assert.Equal(t, []string{"P3"}, productIDs(t, body))

	code, body = get(t, r, "/recommendations/co-purchase/P1?limit=1")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, []string{"P2"}, productIDs(t, body))

	code, body = get(t, r, "/recommendations/content/P1")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, "content_based", body["strategy"])
	assert.Equal(t, []string{"P2"}, productIDs(t, body))

	code, body = get(t, r, "/recommendations/content/category/CAT1")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, []string{"P1", "P2"}, productIDs(t, body))

	code, body = get(t, r, "/recommendations/popular")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, "popular_products", body["strategy"])
	assert.Equal(t, "P1", productIDs(t, body)[0])

	code, body = get(t, r, "/recommendations/for-customer/C3")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, "popular_products", body["strategy"])
}

func TestUnknownCustomerIsEmptyNotError(t *testing.T) {
	r := newRouter(t, graphtest.Scenario(t).Store())
	code, body := get(t, r, "/recommendations/collaborative/nobody")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Empty(t, productIDs(t, body))
}

func TestInvalidLimitIsBadRequest(t *testing.T) {
	r := newRouter(t, graphtest.Scenario(t).Store())
	code, body := get(t, r, "/recommendations/popular?limit=ten")
	require.Equal(t, nethttp.StatusBadRequest, code)
	envelope := body["error"].(map[string]any)
	assert.Equal(t, "invalid_argument", envelope["code"])
	assert.Contains(t, envelope["message"], "limit")
}

func TestStoreDownIsServiceUnavailable(t *testing.T) {
	store := graphtest.Scenario(t).Store()
	store.SetUnavailable(errors.New("connection refused"))
	r := newRouter(t, store)

	code, body := get(t, r, "/recommendations/popular")
	require.Equal(t, nethttp.StatusServiceUnavailable, code)
	assert.Equal(t, "store_unavailable", body["error"].(map[string]any)["code"])

	code, body = get(t, r, "/health")
	require.Equal(t, nethttp.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["ok"])
}

func TestCatalogRoutes(t *testing.T) {
	store := graphtest.Scenario(t).
		Event("E1", "C1", "P3", "view").
		Event("E2", "C1", "P3", "add_to_cart").
		Store()
	r := newRouter(t, store)

	code, body := get(t, r, "/health")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = get(t, r, "/customers")
	require.Equal(t, nethttp.StatusOK, code)
	customers := body["customers"].([]any)
	require.Len(t, customers, 3)
	assert.Equal(t, "Ada", customers[0].(map[string]any)["name"])

	code, body = get(t, r, "/products")
	require.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, body["products"], 3)

	code, body = get(t, r, "/stats")
	require.Equal(t, nethttp.StatusOK, code)
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["customers"])
	assert.EqualValues(t, 2, stats["orders"])
	assert.EqualValues(t, 11, stats["relationships"])

	code, body = get(t, r, "/analytics/customer-journey/C1")
	require.Equal(t, nethttp.StatusOK, code)
	journey := body["journey"].(map[string]any)
	assert.Equal(t, "Ada", journey["customer_name"])
	assert.EqualValues(t, 1, journey["views"])
	assert.EqualValues(t, 1, journey["cart_additions"])
	assert.EqualValues(t, 2, journey["purchases"])

	code, body = get(t, r, "/analytics/customer-journey/ghost")
	require.Equal(t, nethttp.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])
}
