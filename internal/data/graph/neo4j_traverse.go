package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const collaborativeCypher = `
MATCH (c:Customer {id: $customer_id})-[:PLACED]->(:Order)-[:CONTAINS]->(p:Product)
WITH c, collect(DISTINCT p.id) AS mine
MATCH (peer:Customer)-[:PLACED]->(:Order)-[:CONTAINS]->(s:Product)
WHERE peer.id <> c.id AND s.id IN mine
WITH DISTINCT mine, peer
MATCH (peer)-[:PLACED]->(:Order)-[:CONTAINS]->(q:Product)
WITH mine, peer, collect(DISTINCT q.id) AS theirs
WITH mine, peer, theirs, size([x IN theirs WHERE x IN mine]) AS shared
UNWIND theirs AS rid
WITH mine, peer, theirs, shared, rid
WHERE NOT rid IN mine
MATCH (rec:Product {id: rid})
RETURN rec.id AS product_id, rec.name AS name, rec.price AS price,
       peer.id AS via, shared, size(theirs) AS via_total, size(mine) AS anchor_total
`

const contentByProductCypher = `
MATCH (p:Product {id: $product_id})-[:IN_CATEGORY]->(:Category)<-[:IN_CATEGORY]-(rec:Product)
WHERE rec.id <> p.id
OPTIONAL MATCH (rec)<-[:CONTAINS]-(o:Order)
WITH p, rec, count(DISTINCT o) AS orders
RETURN rec.id AS product_id, rec.name AS name, rec.price AS price, orders,
       abs(coalesce(toFloat(rec.price), 0.0) - coalesce(toFloat(p.price), 0.0)) AS distance
`

const contentByCategoryCypher = `
MATCH (:Category {id: $category_id})<-[:IN_CATEGORY]-(rec:Product)
OPTIONAL MATCH (rec)<-[:CONTAINS]-(o:Order)
WITH rec, count(DISTINCT o) AS orders
RETURN rec.id AS product_id, rec.name AS name, rec.price AS price, orders
`

const coPurchaseCypher = `
MATCH (p:Product {id: $product_id})<-[:CONTAINS]-(o:Order)-[:CONTAINS]->(rec:Product)
WHERE rec.id <> p.id
WITH rec, count(DISTINCT o) AS orders
RETURN rec.id AS product_id, rec.name AS name, rec.price AS price, orders
`

const popularityCypher = `
MATCH (rec:Product)<-[:CONTAINS]-(o:Order)
WITH rec, count(DISTINCT o) AS orders
RETURN rec.id AS product_id, rec.name AS name, rec.price AS price, orders
`

// Traverse returns unranked hits; ordering and truncation belong to the
// caller.
func (s *Neo4jStore) Traverse(ctx context.Context, t Traversal) ([]Hit, error) {
	var (
		q      string
		params map[string]any
	)
	switch t.Shape {
	case ShapeCollaborative:
		q, params = collaborativeCypher, map[string]any{"customer_id": t.CustomerID}
	case ShapeContent:
		if t.ProductID != "" {
			q, params = contentByProductCypher, map[string]any{"product_id": t.ProductID}
		} else {
			q, params = contentByCategoryCypher, map[string]any{"category_id": t.CategoryID}
		}
	case ShapeCoPurchase:
		q, params = coPurchaseCypher, map[string]any{"product_id": t.ProductID}
	case ShapePopularity:
		q, params = popularityCypher, nil
	default:
		return nil, fmt.Errorf("graph.neo4j.traverse: unknown shape %q", t.Shape)
	}

	records, err := s.read(ctx, "graph.neo4j.traverse "+string(t.Shape), q, params)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(records))
	for _, rec := range records {
		hits = append(hits, hitFromRecord(t.Shape, rec))
	}
	return hits, nil
}

func hitFromRecord(shape Shape, rec *neo4j.Record) Hit {
	h := Hit{
		ProductID: recString(rec, "product_id"),
		Name:      recString(rec, "name"),
		Price:     recFloat(rec, "price"),
	}
	switch shape {
	case ShapeCollaborative:
		h.Via = recString(rec, "via")
		h.Shared = recInt(rec, "shared")
		h.ViaTotal = recInt(rec, "via_total")
		h.AnchorTotal = recInt(rec, "anchor_total")
	default:
		h.Count = recInt(rec, "orders")
		if v, ok := rec.Get("distance"); ok && v != nil {
			h.PriceDistance = asFloat(v)
			h.HasDistance = true
		}
	}
	return h
}
