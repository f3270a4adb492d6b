package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

func TestBreakerOpensOnStoreUnavailable(t *testing.T) {
	store := NewMemoryStore()
	store.SetUnavailable(errors.New("dial tcp: refused"))
	b := NewBreakerReader(store, BreakerConfig{Name: "test-open", Timeout: time.Minute, FailureThreshold: 2}, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := b.Traverse(ctx, Traversal{Shape: ShapePopularity})
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	store.SetUnavailable(nil)
	_, err := b.Traverse(ctx, Traversal{Shape: ShapePopularity})
	assert.True(t, errors.Is(err, pkgerrors.ErrStoreUnavailable), "open breaker should fail fast as store unavailable, got %v", err)
}

func TestBreakerIgnoresNonTransientErrors(t *testing.T) {
	store := NewMemoryStore()
	b := NewBreakerReader(store, BreakerConfig{Name: "test-closed", Timeout: time.Minute, FailureThreshold: 1}, nil)

	_, err := b.Traverse(context.Background(), Traversal{Shape: "bogus"})
	require.Error(t, err)
	assert.Equal(t, "closed", b.State())

	hits, err := b.Traverse(context.Background(), Traversal{Shape: ShapePopularity})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	b := NewBreakerReader(NewMemoryStore(), DefaultBreakerConfig(), nil)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		err := b.Ping(canceled)
		require.Error(t, err)
		assert.False(t, errors.Is(err, pkgerrors.ErrStoreUnavailable), "canceled caller is not a store outage, got %v", err)
		assert.True(t, errors.Is(err, context.Canceled))
	}
	assert.Equal(t, "closed", b.State())

	_, err := b.Traverse(context.Background(), Traversal{Shape: ShapePopularity})
	assert.NoError(t, err)
}

func TestStoreErrorClassification(t *testing.T) {
	err := storeError("graph.neo4j.read", context.Canceled)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, pkgerrors.ErrStoreUnavailable))

	err = storeError("graph.neo4j.read", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, pkgerrors.ErrStoreUnavailable))
}
