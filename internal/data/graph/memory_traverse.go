package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
)

func (m *MemoryStore) Traverse(ctx context.Context, t Traversal) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("graph.memory.traverse"); err != nil {
		return nil, err
	}
	switch t.Shape {
	case ShapeCollaborative:
		return m.collaborative(t.CustomerID), nil
	case ShapeContent:
		if t.ProductID != "" {
			return m.contentByProduct(t.ProductID), nil
		}
		return m.contentByCategory(t.CategoryID), nil
	case ShapeCoPurchase:
		return m.coPurchase(t.ProductID), nil
	case ShapePopularity:
		return m.popularity(), nil
	default:
		return nil, fmt.Errorf("graph.memory.traverse: unknown shape %q", t.Shape)
	}
}

// out returns the targets of rel edges leaving from.
func (m *MemoryStore) out(rel graphschema.RelType, from string) []string {
	var ids []string
	for k := range m.edges[rel] {
		if k.From == from {
			ids = append(ids, k.To)
		}
	}
	return ids
}

func (m *MemoryStore) in(rel graphschema.RelType, to string) []string {
	var ids []string
	for k := range m.edges[rel] {
		if k.To == to {
			ids = append(ids, k.From)
		}
	}
	return ids
}

func (m *MemoryStore) purchases(customerID string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, orderID := range m.out(graphschema.RelPlaced, customerID) {
		for _, productID := range m.out(graphschema.RelContains, orderID) {
			set[productID] = struct{}{}
		}
	}
	return set
}

func (m *MemoryStore) orderCount(productID string) int64 {
	orders := map[string]struct{}{}
	for _, orderID := range m.in(graphschema.RelContains, productID) {
		orders[orderID] = struct{}{}
	}
	return int64(len(orders))
}

func (m *MemoryStore) productHit(id string) Hit {
	props := m.nodes[graphschema.LabelProduct][id]
	return Hit{ProductID: id, Name: asString(props["name"]), Price: asFloat(props["price"])}
}

func (m *MemoryStore) collaborative(customerID string) []Hit {
	if _, ok := m.nodes[graphschema.LabelCustomer][customerID]; !ok {
		return nil
	}
	mine := m.purchases(customerID)
	if len(mine) == 0 {
		return nil
	}
	var hits []Hit
	for _, peer := range sortedKeys(m.nodes[graphschema.LabelCustomer]) {
		if peer == customerID {
			continue
		}
		theirs := m.purchases(peer)
		var shared int64
		for p := range theirs {
			if _, ok := mine[p]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		for p := range theirs {
			if _, ok := mine[p]; ok {
				continue
			}
			h := m.productHit(p)
			h.Via = peer
			h.Shared = shared
			h.ViaTotal = int64(len(theirs))
			h.AnchorTotal = int64(len(mine))
			hits = append(hits, h)
		}
	}
	return hits
}

func (m *MemoryStore) categoryOf(productID string) (string, bool) {
	cats := m.out(graphschema.RelInCategory, productID)
	if len(cats) == 0 {
		return "", false
	}
	sort.Strings(cats)
	return cats[0], true
}

func (m *MemoryStore) contentByProduct(productID string) []Hit {
	anchor, ok := m.nodes[graphschema.LabelProduct][productID]
	if !ok {
		return nil
	}
	cat, ok := m.categoryOf(productID)
	if !ok {
		return nil
	}
	price := asFloat(anchor["price"])
	var hits []Hit
	for _, id := range m.in(graphschema.RelInCategory, cat) {
		if id == productID {
			continue
		}
		h := m.productHit(id)
		h.Count = m.orderCount(id)
		h.PriceDistance = absf(h.Price - price)
		h.HasDistance = true
		hits = append(hits, h)
	}
	return hits
}

func (m *MemoryStore) contentByCategory(categoryID string) []Hit {
	if _, ok := m.nodes[graphschema.LabelCategory][categoryID]; !ok {
		return nil
	}
	var hits []Hit
	for _, id := range m.in(graphschema.RelInCategory, categoryID) {
		h := m.productHit(id)
		h.Count = m.orderCount(id)
		hits = append(hits, h)
	}
	return hits
}

func (m *MemoryStore) coPurchase(productID string) []Hit {
	counts := map[string]int64{}
	for _, orderID := range m.in(graphschema.RelContains, productID) {
		for _, other := range m.out(graphschema.RelContains, orderID) {
			if other != productID {
				counts[other]++
			}
		}
	}
	hits := make([]Hit, 0, len(counts))
	for id, n := range counts {
		h := m.productHit(id)
		h.Count = n
		hits = append(hits, h)
	}
	return hits
}

func (m *MemoryStore) popularity() []Hit {
	var hits []Hit
	for id := range m.nodes[graphschema.LabelProduct] {
		n := m.orderCount(id)
		if n == 0 {
			continue
		}
		h := m.productHit(id)
		h.Count = n
		hits = append(hits, h)
	}
	return hits
}

func (m *MemoryStore) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("graph.memory.list_customers"); err != nil {
		return nil, err
	}
	out := make([]CustomerSummary, 0, len(m.nodes[graphschema.LabelCustomer]))
	for id, props := range m.nodes[graphschema.LabelCustomer] {
		out = append(out, CustomerSummary{ID: id, Name: asString(props["name"]), JoinDate: asTime(props["join_date"])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("graph.memory.list_products"); err != nil {
		return nil, err
	}
	out := make([]ProductSummary, 0, len(m.nodes[graphschema.LabelProduct]))
	for id, props := range m.nodes[graphschema.LabelProduct] {
		p := ProductSummary{ID: id, Name: asString(props["name"]), Price: asFloat(props["price"])}
		if cat, ok := m.categoryOf(id); ok {
			p.CategoryID = cat
			p.Category = asString(m.nodes[graphschema.LabelCategory][cat]["name"])
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CustomerJourney(ctx context.Context, customerID string) (*Journey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("graph.memory.journey"); err != nil {
		return nil, err
	}
	props, ok := m.nodes[graphschema.LabelCustomer][customerID]
	if !ok {
		return nil, nil
	}
	distinct := func(rel graphschema.RelType) int64 {
		set := map[string]struct{}{}
		for _, p := range m.out(rel, customerID) {
			set[p] = struct{}{}
		}
		return int64(len(set))
	}
	return &Journey{
		CustomerName:  asString(props["name"]),
		Views:         distinct(graphschema.RelViewed),
		Clicks:        distinct(graphschema.RelClicked),
		CartAdditions: distinct(graphschema.RelAddedToCart),
		Purchases:     int64(len(m.purchases(customerID))),
	}, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("graph.memory.stats"); err != nil {
		return nil, err
	}
	var rels int64
	for _, byKey := range m.edges {
		rels += int64(len(byKey))
	}
	return &Stats{
		Customers:     int64(len(m.nodes[graphschema.LabelCustomer])),
		Products:      int64(len(m.nodes[graphschema.LabelProduct])),
		Orders:        int64(len(m.nodes[graphschema.LabelOrder])),
		Categories:    int64(len(m.nodes[graphschema.LabelCategory])),
		Relationships: rels,
	}, nil
}
