// Package recommend ranks products by traversing the commerce graph.
//
// Every strategy is the same traverse-score-rank routine over a different
// traversal shape. Ranking is by score descending, ties by product id
// ascending, truncated to the resolved limit. Missing graph context yields an
// empty ranking; only store failures are errors.
package recommend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/observability"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type Engine struct {
	store graph.Reader
	cfg   Config
	log   *logger.Logger
}

func NewEngine(store graph.Reader, cfg Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.CollaborativeScoring == "" {
		cfg.CollaborativeScoring = ScoringRaw
	}
	return &Engine{store: store, cfg: cfg, log: log.With("component", "RecommendEngine")}
}

func (e *Engine) Config() Config { return e.cfg }

// Collaborative ranks products bought by customers who share at least one
// purchase with customerID, excluding what customerID already bought.
func (e *Engine) Collaborative(ctx context.Context, customerID string, limit int) ([]RankedProduct, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return []RankedProduct{}, nil
	}
	return e.rank(ctx, StrategyCollaborative, graph.Traversal{Shape: graph.ShapeCollaborative, CustomerID: customerID}, limit)
}

// ContentBased ranks products sharing the anchor's category. A product
// anchor scores by price proximity; a category anchor scores by order count.
func (e *Engine) ContentBased(ctx context.Context, anchor ContentAnchor, limit int) ([]RankedProduct, error) {
	anchor.ProductID = strings.TrimSpace(anchor.ProductID)
	anchor.CategoryID = strings.TrimSpace(anchor.CategoryID)
	if anchor.ProductID == "" && anchor.CategoryID == "" {
		return []RankedProduct{}, nil
	}
	return e.rank(ctx, StrategyContent, graph.Traversal{
		Shape:      graph.ShapeContent,
		ProductID:  anchor.ProductID,
		CategoryID: anchor.CategoryID,
	}, limit)
}

// CoPurchase ranks products by the number of orders they share with
// productID.
func (e *Engine) CoPurchase(ctx context.Context, productID string, limit int) ([]RankedProduct, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return []RankedProduct{}, nil
	}
	return e.rank(ctx, StrategyCoPurchase, graph.Traversal{Shape: graph.ShapeCoPurchase, ProductID: productID}, limit)
}

// Popular ranks products by the number of distinct orders containing them.
func (e *Engine) Popular(ctx context.Context, limit int) ([]RankedProduct, error) {
	return e.rank(ctx, StrategyPopular, graph.Traversal{Shape: graph.ShapePopularity}, limit)
}

// ForCustomer serves collaborative results and falls back to popularity
// when the customer has no usable purchase context.
func (e *Engine) ForCustomer(ctx context.Context, customerID string, limit int) (*Result, error) {
	items, err := e.Collaborative(ctx, customerID, limit)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return &Result{Strategy: StrategyCollaborative, Items: items}, nil
	}
	items, err = e.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &Result{Strategy: StrategyPopular, Items: items}, nil
}

func (e *Engine) rank(ctx context.Context, strategy Strategy, t graph.Traversal, limit int) (items []RankedProduct, err error) {
	limit = e.cfg.Limit(limit)
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "recommend."+string(strategy),
		attribute.String("recommend.strategy", string(strategy)),
		attribute.Int("recommend.limit", limit),
	)
	defer func() {
		observability.RecordRecommendation(string(strategy), err, time.Since(start))
		observability.EndSpan(span, err)
	}()

	hits, err := e.store.Traverse(ctx, t)
	if err != nil {
		e.log.Warn("graph traversal failed", "strategy", string(strategy), "error", err)
		if pkgerrors.KindOf(err) != pkgerrors.KindStoreUnavailable && !errors.Is(err, context.Canceled) {
			err = pkgerrors.New(pkgerrors.KindStoreUnavailable, "recommend."+string(strategy), err)
		}
		return nil, err
	}

	score := e.scorer(t)
	byID := make(map[string]*RankedProduct, len(hits))
	for _, h := range hits {
		rp := byID[h.ProductID]
		if rp == nil {
			rp = &RankedProduct{ProductID: h.ProductID, Name: h.Name, Price: h.Price}
			byID[h.ProductID] = rp
		}
		rp.Score += score(h)
	}

	items = make([]RankedProduct, 0, len(byID))
	for _, rp := range byID {
		items = append(items, *rp)
	}
	sortRanked(items)
	if len(items) > limit {
		items = items[:limit]
	}
	span.SetAttributes(attribute.Int("recommend.results", len(items)))
	return items, nil
}

func sortRanked(items []RankedProduct) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ProductID < items[j].ProductID
	})
}
