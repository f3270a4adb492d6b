package etl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

// recordingWriter logs the order of writes on top of a memory store.
type recordingWriter struct {
	*graph.MemoryStore
	mu    sync.Mutex
	calls []string
	short bool
}

func (w *recordingWriter) UpsertNodes(ctx context.Context, label graphschema.Label, rows []graph.NodeRecord) (int, error) {
	w.mu.Lock()
	w.calls = append(w.calls, "node:"+string(label))
	w.mu.Unlock()
	return w.MemoryStore.UpsertNodes(ctx, label, rows)
}

func (w *recordingWriter) UpsertEdges(ctx context.Context, rel graphschema.Rel, rows []graph.EdgeRecord) (int, error) {
	w.mu.Lock()
	w.calls = append(w.calls, "edge:"+string(rel.Type))
	w.mu.Unlock()
	n, err := w.MemoryStore.UpsertEdges(ctx, rel, rows)
	if w.short && n > 0 {
		n--
	}
	return n, err
}

func TestLoaderWritesEntitiesBeforeRelationships(t *testing.T) {
	p, err := BuildPlan(scenarioInstructions())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	w := &recordingWriter{MemoryStore: graph.NewMemoryStore()}
	report, err := NewLoader(w, 1, nil).Load(context.Background(), p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	seenEdge := false
	for _, c := range w.calls {
		isEdge := len(c) > 5 && c[:5] == "edge:"
		if seenEdge && !isEdge {
			t.Fatalf("node write after edge write: %v", w.calls)
		}
		seenEdge = seenEdge || isEdge
	}
	if report.NodeTotal() != 4 || report.EdgeTotal() != 3 {
		t.Fatalf("report: nodes=%d edges=%d", report.NodeTotal(), report.EdgeTotal())
	}
}

func TestLoaderUnknownEndpointWritesNothing(t *testing.T) {
	instrs := append(scenarioInstructions(),
		UpsertEdge(graphschema.RelContains, "O1", "P404", "", nil),
	)
	p, err := BuildPlan(instrs)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	store := graph.NewMemoryStore()
	_, err = NewLoader(store, 0, nil).Load(context.Background(), p)
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
	if nodes, edges := store.Writes(); nodes != 0 || edges != 0 {
		t.Fatalf("writes: want none got nodes=%d edges=%d", nodes, edges)
	}
}

func TestLoaderStoreShortfallIsDangling(t *testing.T) {
	p, err := BuildPlan(scenarioInstructions())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	w := &recordingWriter{MemoryStore: graph.NewMemoryStore(), short: true}
	_, err = NewLoader(w, 10, nil).Load(context.Background(), p)
	if !errors.Is(err, pkgerrors.ErrDanglingReference) {
		t.Fatalf("want dangling reference, got %v", err)
	}
}

func TestLoaderPropagatesStoreFailure(t *testing.T) {
	p, err := BuildPlan(scenarioInstructions())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	store := graph.NewMemoryStore()
	store.SetUnavailable(errors.New("broken pipe"))
	_, err = NewLoader(store, 10, nil).Load(context.Background(), p)
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Fatalf("want store unavailable, got %v", err)
	}
}

func TestChunks(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	got := chunks(rows, 2)
	if len(got) != 3 || len(got[2]) != 1 {
		t.Fatalf("chunks: got=%v", got)
	}
	if len(chunks([]int{}, 2)) != 0 {
		t.Fatalf("empty input should yield no chunks")
	}
}
