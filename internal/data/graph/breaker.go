package graph

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yungbote/shopgraph/internal/observability"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "graph-read",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerReader guards a Reader with a circuit breaker. Only store
// unavailability trips it; while open every call fails fast with
// StoreUnavailable.
type BreakerReader struct {
	next Reader
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerReader(next Reader, cfg BreakerConfig, log *logger.Logger) *BreakerReader {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	log = log.With("component", "GraphBreaker", "breaker", cfg.Name)
	observability.GraphBreakerState.WithLabelValues(cfg.Name).Set(0)
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return !errors.Is(err, pkgerrors.ErrStoreUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("graph breaker state change", "from", from.String(), "to", to.String())
			observability.GraphBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	return &BreakerReader{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (b *BreakerReader) State() string { return b.cb.State().String() }

func guard[T any](b *BreakerReader, op string, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, pkgerrors.New(pkgerrors.KindStoreUnavailable, op, err)
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func (b *BreakerReader) Ping(ctx context.Context) error {
	_, err := guard(b, "graph.ping", func() (struct{}, error) { return struct{}{}, b.next.Ping(ctx) })
	return err
}

func (b *BreakerReader) Traverse(ctx context.Context, t Traversal) ([]Hit, error) {
	return guard(b, "graph.traverse", func() ([]Hit, error) { return b.next.Traverse(ctx, t) })
}

func (b *BreakerReader) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	return guard(b, "graph.list_customers", func() ([]CustomerSummary, error) { return b.next.ListCustomers(ctx) })
}

func (b *BreakerReader) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	return guard(b, "graph.list_products", func() ([]ProductSummary, error) { return b.next.ListProducts(ctx) })
}

func (b *BreakerReader) CustomerJourney(ctx context.Context, customerID string) (*Journey, error) {
	return guard(b, "graph.journey", func() (*Journey, error) { return b.next.CustomerJourney(ctx, customerID) })
}

func (b *BreakerReader) Stats(ctx context.Context) (*Stats, error) {
	return guard(b, "graph.stats", func() (*Stats, error) { return b.next.Stats(ctx) })
}
