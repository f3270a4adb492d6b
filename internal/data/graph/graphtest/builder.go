// Package graphtest builds small in-memory commerce graphs for tests.
package graphtest

import (
	"context"
	"testing"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
)

type Builder struct {
	tb    testing.TB
	store *graph.MemoryStore
}

func New(tb testing.TB) *Builder {
	tb.Helper()
	return &Builder{tb: tb, store: graph.NewMemoryStore()}
}

func (b *Builder) Store() *graph.MemoryStore { return b.store }

func (b *Builder) node(label graphschema.Label, id string, attrs map[string]any) *Builder {
	b.tb.Helper()
	if _, err := b.store.UpsertNodes(context.Background(), label, []graph.NodeRecord{{ID: id, Attrs: attrs}}); err != nil {
		b.tb.Fatalf("upsert %s %s: %v", label, id, err)
	}
	return b
}

func (b *Builder) edge(rt graphschema.RelType, from, to, key string, attrs map[string]any) *Builder {
	b.tb.Helper()
	rel, _ := graphschema.RelFor(rt)
	n, err := b.store.UpsertEdges(context.Background(), rel, []graph.EdgeRecord{{FromID: from, ToID: to, Key: key, Attrs: attrs}})
	if err != nil || n != 1 {
		b.tb.Fatalf("upsert %s %s->%s: matched=%d err=%v", rt, from, to, n, err)
	}
	return b
}

func (b *Builder) Customer(id, name string) *Builder {
	return b.node(graphschema.LabelCustomer, id, map[string]any{"name": name})
}

func (b *Builder) Category(id, name string) *Builder {
	return b.node(graphschema.LabelCategory, id, map[string]any{"name": name})
}

func (b *Builder) Product(id, name string, price float64, categoryID string) *Builder {
	b.node(graphschema.LabelProduct, id, map[string]any{"name": name, "price": price})
	return b.edge(graphschema.RelInCategory, id, categoryID, "", nil)
}

// Order places an order for customerID containing one of each product.
func (b *Builder) Order(id, customerID string, productIDs ...string) *Builder {
	b.node(graphschema.LabelOrder, id, nil)
	b.edge(graphschema.RelPlaced, customerID, id, "", nil)
	for _, p := range productIDs {
		b.edge(graphschema.RelContains, id, p, "", map[string]any{"quantity": int64(1)})
	}
	return b
}

func (b *Builder) Event(eventID, customerID, productID, eventType string) *Builder {
	return b.edge(graphschema.EventRel(eventType), customerID, productID, eventID, map[string]any{"event_type": eventType})
}

// Scenario is C1 -> O1 {P1, P2} and C2 -> O2 {P1, P3}, with P1 and P2 in
// Electronics and P3 in Books. C3 has no orders.
func Scenario(tb testing.TB) *Builder {
	tb.Helper()
	return New(tb).
		Customer("C1", "Ada").
		Customer("C2", "Bob").
		Customer("C3", "Cy").
		Category("CAT1", "Electronics").
		Category("CAT2", "Books").
		Product("P1", "Headphones", 100, "CAT1").
		Product("P2", "Speaker", 120, "CAT1").
		Product("P3", "Novel", 15, "CAT2").
		Order("O1", "C1", "P1", "P2").
		Order("O2", "C2", "P1", "P3")
}
