package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shopgraph/internal/recommend"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SHOPGRAPH_CONFIG", "")
	t.Setenv("GRAPH_BACKEND", "")
	t.Setenv("RECOMMEND_CF_SCORING", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GraphBackendNeo4j, cfg.GraphBackend)
	assert.Equal(t, 5, cfg.Recommend.DefaultLimit)
	assert.Equal(t, recommend.ScoringRaw, cfg.Recommend.CollaborativeScoring)
	assert.True(t, cfg.ETL.IncludeEvents)
}

func TestOverlayDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph_backend: memory
etl_batch_size: 50
etl_lock_ttl: 2m
recommend_cf_scoring: raw
cors_origins:
  - https://a.example.com
  - https://b.example.com
`), 0o600))

	t.Setenv("SHOPGRAPH_CONFIG", path)
	t.Setenv("RECOMMEND_CF_SCORING", "jaccard")
	for _, k := range []string{"GRAPH_BACKEND", "ETL_BATCH_SIZE", "ETL_LOCK_TTL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GraphBackendMemory, cfg.GraphBackend)
	assert.Equal(t, 50, cfg.ETL.BatchSize)
	assert.Equal(t, 2*time.Minute, cfg.ETL.LockTTL)
	assert.Equal(t, recommend.ScoringJaccard, cfg.Recommend.CollaborativeScoring)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SHOPGRAPH_CONFIG", "")
	t.Setenv("GRAPH_BACKEND", "sqlite")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsNonPositiveCounts(t *testing.T) {
	t.Setenv("SHOPGRAPH_CONFIG", "")
	t.Setenv("GRAPH_BACKEND", "memory")

	for _, key := range []string{"READINESS_MAX_TRIES", "GRAPH_BREAKER_FAILURES"} {
		for _, val := range []string{"-1", "0"} {
			t.Run(key+"="+val, func(t *testing.T) {
				t.Setenv(key, val)
				_, err := LoadConfig()
				assert.Error(t, err)
			})
		}
	}
}

func TestValidateRejectsZeroReadinessTries(t *testing.T) {
	t.Setenv("SHOPGRAPH_CONFIG", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.ETL.Readiness.MaxTries = 0
	assert.Error(t, cfg.Validate())
}
