package etl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

type flakyPinger struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyPinger) Ping(context.Context) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func fastReadiness(tries uint) ReadinessConfig {
	return ReadinessConfig{MaxTries: tries, Interval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestWaitForStoreRetriesUntilReady(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := WaitForStore(context.Background(), p, fastReadiness(5), nil); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := p.calls.Load(); got != 3 {
		t.Fatalf("calls: want=3 got=%d", got)
	}
}

func TestWaitForSourceGivesUp(t *testing.T) {
	p := &flakyPinger{failures: 100}
	err := WaitForSource(context.Background(), p, fastReadiness(3), nil)
	if !errors.Is(err, pkgerrors.ErrSourceUnavailable) {
		t.Fatalf("want source unavailable, got %v", err)
	}
	if got := p.calls.Load(); got != 3 {
		t.Fatalf("calls: want=3 got=%d", got)
	}
}
