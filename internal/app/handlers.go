package app

import (
	"github.com/yungbote/shopgraph/internal/data/graph"
	httpH "github.com/yungbote/shopgraph/internal/http/handlers"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/recommend"
)

type Handlers struct {
	Health          *httpH.HealthHandler
	Catalog         *httpH.CatalogHandler
	Recommendations *httpH.RecommendationHandler
}

func wireHandlers(log *logger.Logger, reader graph.Reader, engine *recommend.Engine) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:          httpH.NewHealthHandler(reader),
		Catalog:         httpH.NewCatalogHandler(log, reader),
		Recommendations: httpH.NewRecommendationHandler(log, engine),
	}
}
