package graph

import "context"

func (s *Neo4jStore) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	records, err := s.read(ctx, "graph.neo4j.list_customers", `
MATCH (c:Customer)
RETURN c.id AS id, c.name AS name, c.join_date AS join_date
ORDER BY c.name, c.id
`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerSummary, 0, len(records))
	for _, rec := range records {
		jd, _ := rec.Get("join_date")
		out = append(out, CustomerSummary{
			ID:       recString(rec, "id"),
			Name:     recString(rec, "name"),
			JoinDate: asTime(jd),
		})
	}
	return out, nil
}

func (s *Neo4jStore) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	records, err := s.read(ctx, "graph.neo4j.list_products", `
MATCH (p:Product)
OPTIONAL MATCH (p)-[:IN_CATEGORY]->(cat:Category)
RETURN p.id AS id, p.name AS name, p.price AS price,
       cat.id AS category_id, cat.name AS category
ORDER BY p.name, p.id
`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]ProductSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, ProductSummary{
			ID:         recString(rec, "id"),
			Name:       recString(rec, "name"),
			Price:      recFloat(rec, "price"),
			CategoryID: recString(rec, "category_id"),
			Category:   recString(rec, "category"),
		})
	}
	return out, nil
}

func (s *Neo4jStore) CustomerJourney(ctx context.Context, customerID string) (*Journey, error) {
	records, err := s.read(ctx, "graph.neo4j.journey", `
MATCH (c:Customer {id: $customer_id})
OPTIONAL MATCH (c)-[:VIEWED]->(v:Product)
WITH c, count(DISTINCT v) AS views
OPTIONAL MATCH (c)-[:CLICKED]->(k:Product)
WITH c, views, count(DISTINCT k) AS clicks
OPTIONAL MATCH (c)-[:ADDED_TO_CART]->(a:Product)
WITH c, views, clicks, count(DISTINCT a) AS cart_additions
OPTIONAL MATCH (c)-[:PLACED]->(:Order)-[:CONTAINS]->(p:Product)
RETURN c.name AS name, views, clicks, cart_additions, count(DISTINCT p) AS purchases
`, map[string]any{"customer_id": customerID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	return &Journey{
		CustomerName:  recString(rec, "name"),
		Views:         recInt(rec, "views"),
		Clicks:        recInt(rec, "clicks"),
		CartAdditions: recInt(rec, "cart_additions"),
		Purchases:     recInt(rec, "purchases"),
	}, nil
}

func (s *Neo4jStore) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.read(ctx, "graph.neo4j.stats", `
CALL { MATCH (c:Customer) RETURN count(c) AS customers }
CALL { MATCH (p:Product) RETURN count(p) AS products }
CALL { MATCH (o:Order) RETURN count(o) AS orders }
CALL { MATCH (cat:Category) RETURN count(cat) AS categories }
CALL { MATCH ()-[r]->() RETURN count(r) AS relationships }
RETURN customers, products, orders, categories, relationships
`, nil)
	if err != nil {
		return nil, err
	}
	st := &Stats{}
	if len(records) > 0 {
		rec := records[0]
		st.Customers = recInt(rec, "customers")
		st.Products = recInt(rec, "products")
		st.Orders = recInt(rec, "orders")
		st.Categories = recInt(rec, "categories")
		st.Relationships = recInt(rec, "relationships")
	}
	return st, nil
}
