package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/shopgraph/internal/data/db"
	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/etl"
	"github.com/yungbote/shopgraph/internal/observability"
	"github.com/yungbote/shopgraph/internal/platform/envutil"
	"github.com/yungbote/shopgraph/internal/platform/neo4jdb"
	"github.com/yungbote/shopgraph/internal/platform/redislock"
	"github.com/yungbote/shopgraph/internal/recommend"
)

const (
	GraphBackendNeo4j  = "neo4j"
	GraphBackendMemory = "memory"
)

type Config struct {
	LogMode      string
	Port         string
	GraphBackend string
	CORSOrigins  []string

	Postgres    db.PostgresConfig
	AutoMigrate bool
	Neo4j       neo4jdb.Config
	Breaker     graph.BreakerConfig

	RedisAddr string
	LockKey   string

	ETL         etl.Config
	ETLSchedule string

	Recommend recommend.Config
	Otel      observability.OtelConfig
}

// LoadConfig reads .env, then the YAML overlay named by SHOPGRAPH_CONFIG,
// then the process environment. Real environment variables always win.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	if path := strings.TrimSpace(os.Getenv("SHOPGRAPH_CONFIG")); path != "" {
		if err := applyOverlay(path); err != nil {
			return Config{}, err
		}
	}

	scoring, err := recommend.ParseScoringPolicy(envutil.String("RECOMMEND_CF_SCORING", string(recommend.ScoringRaw)))
	if err != nil {
		return Config{}, err
	}
	rc := recommend.DefaultConfig()
	rc.DefaultLimit = envutil.Int("RECOMMEND_DEFAULT_LIMIT", rc.DefaultLimit)
	rc.MaxLimit = envutil.Int("RECOMMEND_MAX_LIMIT", rc.MaxLimit)
	rc.CollaborativeScoring = scoring

	ec := etl.DefaultConfig()
	ec.BatchSize = envutil.Int("ETL_BATCH_SIZE", ec.BatchSize)
	ec.IncludeEvents = envutil.Bool("ETL_INCLUDE_EVENTS", ec.IncludeEvents)
	ec.LockTTL = envutil.Duration("ETL_LOCK_TTL", ec.LockTTL)
	tries := envutil.Int("READINESS_MAX_TRIES", int(ec.Readiness.MaxTries))
	if tries < 1 {
		return Config{}, fmt.Errorf("READINESS_MAX_TRIES must be at least 1, got %d", tries)
	}
	ec.Readiness.MaxTries = uint(tries)
	ec.Readiness.Interval = envutil.Duration("READINESS_INTERVAL", ec.Readiness.Interval)
	ec.Readiness.MaxInterval = envutil.Duration("READINESS_MAX_INTERVAL", ec.Readiness.MaxInterval)

	bc := graph.DefaultBreakerConfig()
	failures := envutil.Int("GRAPH_BREAKER_FAILURES", int(bc.FailureThreshold))
	if failures < 1 {
		return Config{}, fmt.Errorf("GRAPH_BREAKER_FAILURES must be at least 1, got %d", failures)
	}
	bc.FailureThreshold = uint32(failures)
	bc.Timeout = envutil.Duration("GRAPH_BREAKER_TIMEOUT", bc.Timeout)

	cfg := Config{
		LogMode:      envutil.String("LOG_MODE", "development"),
		Port:         envutil.String("PORT", "8000"),
		GraphBackend: strings.ToLower(envutil.String("GRAPH_BACKEND", GraphBackendNeo4j)),
		CORSOrigins:  splitList(envutil.String("CORS_ORIGINS", "")),
		Postgres:     db.PostgresConfigFromEnv(),
		AutoMigrate:  envutil.Bool("POSTGRES_AUTO_MIGRATE", false),
		Neo4j:        neo4jdb.ConfigFromEnv(),
		Breaker:      bc,
		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		LockKey:      envutil.String("ETL_LOCK_KEY", redislock.DefaultKey),
		ETL:          ec,
		ETLSchedule:  envutil.String("ETL_SCHEDULE", ""),
		Recommend:    rc,
		Otel: observability.OtelConfig{
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "shopgraph"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.GraphBackend {
	case GraphBackendNeo4j, GraphBackendMemory:
	default:
		return fmt.Errorf("GRAPH_BACKEND must be %q or %q, got %q", GraphBackendNeo4j, GraphBackendMemory, c.GraphBackend)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.ETL.BatchSize <= 0 {
		return fmt.Errorf("ETL_BATCH_SIZE must be positive")
	}
	if c.ETL.LockTTL < time.Second {
		return fmt.Errorf("ETL_LOCK_TTL must be at least 1s")
	}
	if c.ETL.Readiness.MaxTries < 1 {
		return fmt.Errorf("READINESS_MAX_TRIES must be at least 1")
	}
	return c.Recommend.Validate()
}

// applyOverlay sets every key in the YAML file that the environment does not
// already define. Values may be scalars or lists; lists are comma-joined.
func applyOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config overlay: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}
	for key, val := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, overlayString(val)); err != nil {
			return fmt.Errorf("apply overlay %s: %w", key, err)
		}
	}
	return nil
}

func overlayString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
