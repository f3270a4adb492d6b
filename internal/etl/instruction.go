package etl

import "github.com/yungbote/shopgraph/internal/domain/graphschema"

// Role is the part a source table plays in the graph.
type Role string

const (
	RoleCustomers  Role = "customers"
	RoleCategories Role = "categories"
	RoleProducts   Role = "products"
	RoleOrders     Role = "orders"
	RoleOrderItems Role = "order_items"
	RoleEvents     Role = "events"
)

type InstructionKind int

const (
	KindUpsertNode InstructionKind = iota + 1
	KindUpsertEdge
)

func (k InstructionKind) String() string {
	switch k {
	case KindUpsertNode:
		return "node"
	case KindUpsertEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// Instruction is one graph write produced by the mapper. Node instructions
// use Label and ID; edge instructions use Rel, the endpoint fields and Key.
type Instruction struct {
	Kind  InstructionKind
	Attrs map[string]any

	Label graphschema.Label
	ID    string

	Rel       graphschema.RelType
	FromLabel graphschema.Label
	FromID    string
	ToLabel   graphschema.Label
	ToID      string
	Key       string

	// Source row, for error context.
	Entity string
	RowID  string
}

func UpsertNode(label graphschema.Label, id string, attrs map[string]any) Instruction {
	return Instruction{Kind: KindUpsertNode, Label: label, ID: id, Attrs: attrs, Entity: string(label), RowID: id}
}

// UpsertEdge fills endpoint labels from the relationship declaration.
func UpsertEdge(rel graphschema.RelType, fromID, toID, key string, attrs map[string]any) Instruction {
	r, _ := graphschema.RelFor(rel)
	return Instruction{
		Kind:      KindUpsertEdge,
		Rel:       rel,
		FromLabel: r.From,
		FromID:    fromID,
		ToLabel:   r.To,
		ToID:      toID,
		Key:       key,
		Attrs:     attrs,
		Entity:    string(rel),
	}
}
