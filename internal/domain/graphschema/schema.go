// Package graphschema names the labels and relationship types of the
// commerce graph and declares the constraints and indexes the store needs.
package graphschema

import (
	"fmt"
	"strings"
)

type Label string

const (
	LabelCustomer Label = "Customer"
	LabelProduct  Label = "Product"
	LabelCategory Label = "Category"
	LabelOrder    Label = "Order"
)

// Labels lists every node label in load order.
func Labels() []Label {
	return []Label{LabelCustomer, LabelCategory, LabelProduct, LabelOrder}
}

type RelType string

const (
	RelPlaced     RelType = "PLACED"
	RelContains   RelType = "CONTAINS"
	RelInCategory RelType = "IN_CATEGORY"

	RelViewed      RelType = "VIEWED"
	RelClicked     RelType = "CLICKED"
	RelAddedToCart RelType = "ADDED_TO_CART"
	RelInteracted  RelType = "INTERACTED"
)

// Rel describes a relationship type: its endpoint labels and the property
// that distinguishes parallel edges between the same endpoints. An empty
// KeyProp means the edge is keyed on its endpoints alone.
type Rel struct {
	Type    RelType
	From    Label
	To      Label
	KeyProp string
}

var rels = map[RelType]Rel{
	RelPlaced:      {Type: RelPlaced, From: LabelCustomer, To: LabelOrder},
	RelContains:    {Type: RelContains, From: LabelOrder, To: LabelProduct},
	RelInCategory:  {Type: RelInCategory, From: LabelProduct, To: LabelCategory},
	RelViewed:      {Type: RelViewed, From: LabelCustomer, To: LabelProduct, KeyProp: "event_id"},
	RelClicked:     {Type: RelClicked, From: LabelCustomer, To: LabelProduct, KeyProp: "event_id"},
	RelAddedToCart: {Type: RelAddedToCart, From: LabelCustomer, To: LabelProduct, KeyProp: "event_id"},
	RelInteracted:  {Type: RelInteracted, From: LabelCustomer, To: LabelProduct, KeyProp: "event_id"},
}

func RelFor(t RelType) (Rel, bool) {
	r, ok := rels[t]
	return r, ok
}

// Rels lists every relationship type, structural ones first.
func Rels() []Rel {
	order := []RelType{RelPlaced, RelContains, RelInCategory, RelViewed, RelClicked, RelAddedToCart, RelInteracted}
	out := make([]Rel, 0, len(order))
	for _, t := range order {
		out = append(out, rels[t])
	}
	return out
}

// EventRel maps a source event_type onto its relationship type.
func EventRel(eventType string) RelType {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "view", "viewed":
		return RelViewed
	case "click", "clicked":
		return RelClicked
	case "add_to_cart", "added_to_cart", "cart":
		return RelAddedToCart
	default:
		return RelInteracted
	}
}

type DeclKind string

const (
	DeclUnique DeclKind = "unique"
	DeclIndex  DeclKind = "index"
)

type Declaration struct {
	Kind     DeclKind
	Label    Label
	Property string
}

func (d Declaration) Name() string {
	switch d.Kind {
	case DeclUnique:
		return fmt.Sprintf("%s_%s_unique", strings.ToLower(string(d.Label)), d.Property)
	default:
		return fmt.Sprintf("%s_%s_index", strings.ToLower(string(d.Label)), d.Property)
	}
}

// Cypher renders the declaration as an idempotent DDL statement.
func (d Declaration) Cypher() string {
	switch d.Kind {
	case DeclUnique:
		return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE", d.Name(), d.Label, d.Property)
	default:
		return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)", d.Name(), d.Label, d.Property)
	}
}

type Schema struct {
	Declarations []Declaration
}

func Default() Schema {
	var decls []Declaration
	for _, l := range Labels() {
		decls = append(decls, Declaration{Kind: DeclUnique, Label: l, Property: "id"})
	}
	decls = append(decls,
		Declaration{Kind: DeclIndex, Label: LabelCustomer, Property: "name"},
		Declaration{Kind: DeclIndex, Label: LabelProduct, Property: "name"},
		Declaration{Kind: DeclIndex, Label: LabelProduct, Property: "price"},
	)
	return Schema{Declarations: decls}
}
