package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/etl"
	shophttp "github.com/yungbote/shopgraph/internal/http"
	"github.com/yungbote/shopgraph/internal/observability"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/recommend"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Clients *Clients
	Engine  *recommend.Engine
	Router  *gin.Engine

	// seed loads the in-memory store at startup when GRAPH_BACKEND=memory.
	seed         *etl.Pipeline
	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)

	memory := cfg.GraphBackend == GraphBackendMemory
	clients, err := wireClients(ctx, log, cfg, memory)
	if err != nil {
		log.Sync()
		return nil, err
	}

	var seed *etl.Pipeline
	if memory {
		if seed, err = clients.Pipeline(log, cfg); err != nil {
			clients.Close(ctx)
			log.Sync()
			return nil, err
		}
	}

	reader := graph.NewBreakerReader(clients.Graph, cfg.Breaker, log)
	engine := recommend.NewEngine(reader, cfg.Recommend, log)
	handlers := wireHandlers(log, reader, engine)
	router := shophttp.NewRouter(shophttp.RouterConfig{
		Log:                   log,
		ServiceName:           cfg.Otel.ServiceName,
		CORSOrigins:           cfg.CORSOrigins,
		HealthHandler:         handlers.Health,
		CatalogHandler:        handlers.Catalog,
		RecommendationHandler: handlers.Recommendations,
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Engine:       engine,
		Router:       router,
		seed:         seed,
		shutdownOtel: shutdownOtel,
	}, nil
}

// Start launches background work tied to the app lifetime.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.seed != nil {
		go func() {
			if _, err := a.seed.Run(ctx); err != nil {
				a.Log.Error("seeding in-memory graph failed", "error", err)
			}
		}()
	}
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return (&shophttp.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx := context.Background()
	a.Clients.Close(ctx)
	if a.shutdownOtel != nil {
		_ = a.shutdownOtel(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
