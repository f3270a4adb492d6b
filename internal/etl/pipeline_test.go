package etl_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/data/source"
	"github.com/yungbote/shopgraph/internal/data/source/sourcetest"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	"github.com/yungbote/shopgraph/internal/domain/shop"
	"github.com/yungbote/shopgraph/internal/etl"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/redislock"
)

func testConfig() etl.Config {
	cfg := etl.DefaultConfig()
	cfg.BatchSize = 2
	cfg.Readiness = etl.ReadinessConfig{MaxTries: 2, Interval: time.Millisecond, MaxInterval: time.Millisecond}
	return cfg
}

func newPipeline(t *testing.T, db *gorm.DB, store *graph.MemoryStore, lock etl.Locker) *etl.Pipeline {
	t.Helper()
	log := sourcetest.Logger(t)
	return etl.NewPipeline(source.NewExtractor(db, log), store, lock, testConfig(), log)
}

func TestPipelineLoadsScenario(t *testing.T) {
	store := graph.NewMemoryStore()
	report, err := newPipeline(t, sourcetest.Scenario(t), store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RowsExtracted["order_items"] != 4 || report.RowsExtracted["events"] != 2 {
		t.Fatalf("rows extracted: got=%v", report.RowsExtracted)
	}
	if got := report.Load.Nodes[graphschema.LabelProduct]; got != 3 {
		t.Fatalf("products loaded: want=3 got=%d", got)
	}
	if got := report.Load.Edges[graphschema.RelContains]; got != 4 {
		t.Fatalf("line items loaded: want=4 got=%d", got)
	}
	if got := len(store.Declarations()); got != len(graphschema.Default().Declarations) {
		t.Fatalf("declarations: want=%d got=%d", len(graphschema.Default().Declarations), got)
	}

	snap := store.Snapshot()
	p1 := snap.Nodes[graphschema.LabelProduct]["P1"]
	if p1["price"] != 100.0 || p1["name"] != "Headphones" {
		t.Fatalf("P1 props: got=%v", p1)
	}
	if _, ok := p1["synced_at"]; ok {
		t.Fatalf("run timestamps must not be written to nodes")
	}
	if got := len(snap.Edges[graphschema.RelViewed]); got != 1 {
		t.Fatalf("viewed edges: want=1 got=%d", got)
	}
	if got := len(snap.Edges[graphschema.RelAddedToCart]); got != 1 {
		t.Fatalf("cart edges: want=1 got=%d", got)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	db := sourcetest.Scenario(t)
	store := graph.NewMemoryStore()
	p := newPipeline(t, db, store, nil)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := store.Snapshot()
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := store.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("graph changed between identical runs:\nfirst=%+v\nsecond=%+v", first, second)
	}
}

func TestPipelineReferentialCompleteness(t *testing.T) {
	store := graph.NewMemoryStore()
	if _, err := newPipeline(t, sourcetest.Scenario(t), store, nil).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	inCategory := map[string]int{}
	for _, e := range store.Edges(graphschema.RelInCategory) {
		inCategory[e.FromID]++
	}
	for _, id := range store.NodeIDs(graphschema.LabelProduct) {
		if inCategory[id] != 1 {
			t.Fatalf("product %s: want one IN_CATEGORY got=%d", id, inCategory[id])
		}
	}
	placed, lines := map[string]int{}, map[string]int{}
	for _, e := range store.Edges(graphschema.RelPlaced) {
		placed[e.ToID]++
	}
	for _, e := range store.Edges(graphschema.RelContains) {
		lines[e.FromID]++
	}
	for _, id := range store.NodeIDs(graphschema.LabelOrder) {
		if placed[id] != 1 || lines[id] < 1 {
			t.Fatalf("order %s: placed=%d lines=%d", id, placed[id], lines[id])
		}
	}
}

func TestPipelineNullCategoryAbortsBeforeWrites(t *testing.T) {
	db := sourcetest.Scenario(t)
	sourcetest.Insert(t, db, &shop.Product{ID: "P9", Name: "Orphan", Price: 5})
	store := graph.NewMemoryStore()

	_, err := newPipeline(t, db, store, nil).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
	if nodes, edges := store.Writes(); nodes != 0 || edges != 0 {
		t.Fatalf("writes: want none got nodes=%d edges=%d", nodes, edges)
	}
}

func TestPipelineLineItemWithUnknownProduct(t *testing.T) {
	db := sourcetest.Scenario(t)
	sourcetest.Insert(t, db, &shop.OrderItem{OrderID: "O1", ProductID: "P404", Quantity: 1})
	store := graph.NewMemoryStore()

	_, err := newPipeline(t, db, store, nil).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
	var pe *pkgerrors.Error
	if !errors.As(err, &pe) || pe.Entity != "OrderItem" || pe.RowID != "O1/P404" {
		t.Fatalf("want OrderItem O1/P404, got %+v", pe)
	}
	if nodes, _ := store.Writes(); nodes != 0 {
		t.Fatalf("node writes: want=0 got=%d", nodes)
	}
}

func TestPipelineProductWithUnknownCategory(t *testing.T) {
	db := sourcetest.Scenario(t)
	sourcetest.Insert(t, db, &shop.Product{ID: "P9", Name: "Lost", Price: 5, CategoryID: sourcetest.Str("CAT404")})
	store := graph.NewMemoryStore()

	_, err := newPipeline(t, db, store, nil).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
	if errors.Is(err, pkgerrors.ErrDanglingReference) {
		t.Fatalf("bad foreign key must not be reported as dangling: %v", err)
	}
	var pe *pkgerrors.Error
	if !errors.As(err, &pe) || pe.Entity != "Product" || pe.RowID != "P9" {
		t.Fatalf("want Product P9, got %+v", pe)
	}
	if nodes, edges := store.Writes(); nodes != 0 || edges != 0 {
		t.Fatalf("writes: want none got nodes=%d edges=%d", nodes, edges)
	}
}

func TestPipelineStoreUnavailableStopsBeforeExtraction(t *testing.T) {
	store := graph.NewMemoryStore()
	store.SetUnavailable(errors.New("connection refused"))
	_, err := newPipeline(t, sourcetest.Empty(t), store, nil).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Fatalf("want store unavailable, got %v", err)
	}
}

func TestPipelineMissingTableIsSchemaMismatch(t *testing.T) {
	_, err := newPipeline(t, sourcetest.Empty(t), graph.NewMemoryStore(), nil).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrSchemaMismatch) {
		t.Fatalf("want schema mismatch, got %v", err)
	}
}

func TestPipelineRunLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	lock := redislock.New(rdb, "etl-test-lock", nil)

	held, err := lock.Acquire(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	_, err = newPipeline(t, sourcetest.Scenario(t), graph.NewMemoryStore(), lock).Run(context.Background())
	if !errors.Is(err, pkgerrors.ErrRunInProgress) {
		t.Fatalf("want run in progress, got %v", err)
	}

	if err := held(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := newPipeline(t, sourcetest.Scenario(t), graph.NewMemoryStore(), lock).Run(context.Background()); err != nil {
		t.Fatalf("run after release: %v", err)
	}
	if mr.Exists("etl-test-lock") {
		t.Fatalf("pipeline should release its lock")
	}
}
