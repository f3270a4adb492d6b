// Package graph stores the commerce graph and answers the traversals the
// recommendation engine ranks over. Neo4jStore is the production backend;
// MemoryStore is an id-indexed arena with identical semantics.
package graph

import (
	"context"
	"time"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
)

type NodeRecord struct {
	ID    string
	Attrs map[string]any
}

// EdgeRecord addresses an edge by its endpoint ids. Key is only used for
// relationship types with a KeyProp.
type EdgeRecord struct {
	FromID string
	ToID   string
	Key    string
	Attrs  map[string]any
}

type Writer interface {
	Ping(ctx context.Context) error
	ApplyDeclaration(ctx context.Context, d graphschema.Declaration) error
	// UpsertNodes merges rows on id and returns how many were written.
	UpsertNodes(ctx context.Context, label graphschema.Label, rows []NodeRecord) (int, error)
	// UpsertEdges merges rows between existing endpoints and returns how many
	// rows matched both endpoints.
	UpsertEdges(ctx context.Context, rel graphschema.Rel, rows []EdgeRecord) (int, error)
}

type Reader interface {
	Ping(ctx context.Context) error
	Traverse(ctx context.Context, t Traversal) ([]Hit, error)
	ListCustomers(ctx context.Context) ([]CustomerSummary, error)
	ListProducts(ctx context.Context) ([]ProductSummary, error)
	// CustomerJourney returns nil, nil for an unknown customer.
	CustomerJourney(ctx context.Context, customerID string) (*Journey, error)
	Stats(ctx context.Context) (*Stats, error)
}

type Store interface {
	Writer
	Reader
	Close(ctx context.Context) error
}

type Shape string

const (
	ShapeCollaborative Shape = "collaborative"
	ShapeContent       Shape = "content"
	ShapeCoPurchase    Shape = "co_purchase"
	ShapePopularity    Shape = "popularity"
)

// Traversal selects a shape and its anchor. Content uses ProductID when set,
// otherwise CategoryID.
type Traversal struct {
	Shape      Shape
	CustomerID string
	ProductID  string
	CategoryID string
}

// Hit is one raw traversal row. Which counters are filled depends on the
// shape:
//
//	collaborative: Via (peer id), Shared, ViaTotal, AnchorTotal; one hit per peer
//	content:       Count (orders), PriceDistance/HasDistance for product anchors
//	co_purchase:   Count (orders containing both products)
//	popularity:    Count (orders containing the product)
type Hit struct {
	ProductID     string
	Name          string
	Price         float64
	Via           string
	Count         int64
	Shared        int64
	ViaTotal      int64
	AnchorTotal   int64
	PriceDistance float64
	HasDistance   bool
}

type CustomerSummary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	JoinDate *time.Time `json:"join_date,omitempty"`
}

type ProductSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID string  `json:"category_id,omitempty"`
	Category   string  `json:"category,omitempty"`
}

type Journey struct {
	CustomerName  string `json:"customer_name"`
	Views         int64  `json:"views"`
	Clicks        int64  `json:"clicks"`
	CartAdditions int64  `json:"cart_additions"`
	Purchases     int64  `json:"purchases"`
}

type Stats struct {
	Customers     int64 `json:"customers"`
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	Categories    int64 `json:"categories"`
	Relationships int64 `json:"relationships"`
}
