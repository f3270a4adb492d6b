package etl

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadinessConfig struct {
	MaxTries    uint
	Interval    time.Duration
	MaxInterval time.Duration
}

func DefaultReadinessConfig() ReadinessConfig {
	return ReadinessConfig{MaxTries: 30, Interval: 2 * time.Second, MaxInterval: 30 * time.Second}
}

// WaitForSource blocks until the relational source answers or the retry
// budget is spent.
func WaitForSource(ctx context.Context, src Pinger, cfg ReadinessConfig, log *logger.Logger) error {
	return waitFor(ctx, "source", src, cfg, pkgerrors.KindSourceUnavailable, log)
}

// WaitForStore blocks until the graph store answers or the retry budget is
// spent.
func WaitForStore(ctx context.Context, store Pinger, cfg ReadinessConfig, log *logger.Logger) error {
	return waitFor(ctx, "store", store, cfg, pkgerrors.KindStoreUnavailable, log)
}

func waitFor(ctx context.Context, name string, p Pinger, cfg ReadinessConfig, kind pkgerrors.Kind, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.MaxInterval < cfg.Interval {
		cfg.MaxInterval = cfg.Interval
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Interval
	bo.MaxInterval = cfg.MaxInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, p.Ping(ctx)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("dependency not ready", "dependency", name, "attempt", attempt, "retry_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		return pkgerrors.New(kind, "etl.wait_"+name, err)
	}
	log.Info("dependency ready", "dependency", name, "attempts", attempt)
	return nil
}
