package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/shopgraph/internal/http/handlers"
	httpMW "github.com/yungbote/shopgraph/internal/http/middleware"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	HealthHandler         *httpH.HealthHandler
	CatalogHandler        *httpH.CatalogHandler
	RecommendationHandler *httpH.RecommendationHandler

	// DisableMetrics hides /metrics.
	DisableMetrics bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceRequest())
	r.Use(httpMW.AccessLog(cfg.Log))
	r.Use(httpMW.Metrics())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if !cfg.DisableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Catalog + analytics
	if cfg.CatalogHandler != nil {
		r.GET("/customers", cfg.CatalogHandler.ListCustomers)
		r.GET("/products", cfg.CatalogHandler.ListProducts)
		r.GET("/stats", cfg.CatalogHandler.Stats)
		r.GET("/analytics/customer-journey/:customer_id", cfg.CatalogHandler.CustomerJourney)
	}

	// Recommendations
	if cfg.RecommendationHandler != nil {
		rec := r.Group("/recommendations")
		rec.GET("/collaborative/:customer_id", cfg.RecommendationHandler.Collaborative)
		rec.GET("/for-customer/:customer_id", cfg.RecommendationHandler.ForCustomer)
		rec.GET("/content/:product_id", cfg.RecommendationHandler.ContentByProduct)
		rec.GET("/content/category/:category_id", cfg.RecommendationHandler.ContentByCategory)
		rec.GET("/co-purchase/:product_id", cfg.RecommendationHandler.CoPurchase)
		rec.GET("/popular", cfg.RecommendationHandler.Popular)
	}

	return r
}
