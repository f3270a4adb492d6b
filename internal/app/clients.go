package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/shopgraph/internal/data/db"
	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/data/source"
	"github.com/yungbote/shopgraph/internal/etl"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/platform/neo4jdb"
	"github.com/yungbote/shopgraph/internal/platform/redislock"
)

type Clients struct {
	Graph    graph.Store
	Postgres *db.PostgresService
	Redis    *goredis.Client
}

func wireGraph(log *logger.Logger, cfg Config) (graph.Store, error) {
	if cfg.GraphBackend == GraphBackendMemory {
		log.Warn("Using in-memory graph store; data lives only in this process")
		return graph.NewMemoryStore(), nil
	}
	client, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		return nil, fmt.Errorf("init neo4j: %w", err)
	}
	return graph.NewNeo4jStore(client, log), nil
}

func wirePostgres(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	return pg, nil
}

// wireClients builds the graph store and, when withSource is set, the
// relational source and optional Redis connection used by the ETL.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, withSource bool) (*Clients, error) {
	log.Info("Wiring clients...", "graph_backend", cfg.GraphBackend, "with_source", withSource)
	c := &Clients{}

	store, err := wireGraph(log, cfg)
	if err != nil {
		return nil, err
	}
	c.Graph = store

	if !withSource {
		return c, nil
	}
	pg, err := wirePostgres(log, cfg)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	c.Postgres = pg

	if cfg.AutoMigrate {
		log.Info("Migrating source tables (POSTGRES_AUTO_MIGRATE)")
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := redislock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rdb
	}
	return c, nil
}

// Pipeline assembles the ETL over these clients.
func (c *Clients) Pipeline(log *logger.Logger, cfg Config) (*etl.Pipeline, error) {
	if c.Postgres == nil {
		return nil, fmt.Errorf("pipeline requires a relational source")
	}
	var lock etl.Locker
	if c.Redis != nil {
		lock = redislock.New(c.Redis, cfg.LockKey, log)
	} else {
		log.Warn("REDIS_ADDR not set; running without the cross-process run lock")
	}
	src := source.NewExtractor(c.Postgres.DB(), log)
	return etl.NewPipeline(src, c.Graph, lock, cfg.ETL, log), nil
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Graph != nil {
		_ = c.Graph.Close(ctx)
	}
}
