package etl

import (
	"fmt"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

type edgeIdent struct {
	From string
	To   string
	Key  string
}

// Plan is the deduplicated write set of one run, grouped for the loader's
// two phases. Nodes keep first-seen order; a repeated id merges its
// attributes with later rows winning.
type Plan struct {
	Nodes map[graphschema.Label][]graph.NodeRecord
	Edges map[graphschema.RelType][]graph.EdgeRecord

	nodeIndex map[graphschema.Label]map[string]int
	edgeIndex map[graphschema.RelType]map[edgeIdent]int
}

func newPlan() *Plan {
	return &Plan{
		Nodes:     map[graphschema.Label][]graph.NodeRecord{},
		Edges:     map[graphschema.RelType][]graph.EdgeRecord{},
		nodeIndex: map[graphschema.Label]map[string]int{},
		edgeIndex: map[graphschema.RelType]map[edgeIdent]int{},
	}
}

// BuildPlan groups mapped instructions and checks order and product
// completeness.
func BuildPlan(instrs []Instruction) (*Plan, error) {
	p := newPlan()
	for _, in := range instrs {
		switch in.Kind {
		case KindUpsertNode:
			p.addNode(in)
		case KindUpsertEdge:
			if _, ok := graphschema.RelFor(in.Rel); !ok {
				return nil, pkgerrors.Newf(pkgerrors.KindSchemaMismatch, "etl.plan", "unknown relationship %q", in.Rel)
			}
			p.addEdge(in)
		default:
			return nil, fmt.Errorf("etl.plan: unknown instruction kind %d", in.Kind)
		}
	}
	if err := p.checkCompleteness(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) addNode(in Instruction) {
	idx := p.nodeIndex[in.Label]
	if idx == nil {
		idx = map[string]int{}
		p.nodeIndex[in.Label] = idx
	}
	if i, ok := idx[in.ID]; ok {
		mergeAttrs(p.Nodes[in.Label][i].Attrs, in.Attrs)
		return
	}
	idx[in.ID] = len(p.Nodes[in.Label])
	p.Nodes[in.Label] = append(p.Nodes[in.Label], graph.NodeRecord{ID: in.ID, Attrs: cloneAttrs(in.Attrs)})
}

func (p *Plan) addEdge(in Instruction) {
	idx := p.edgeIndex[in.Rel]
	if idx == nil {
		idx = map[edgeIdent]int{}
		p.edgeIndex[in.Rel] = idx
	}
	k := edgeIdent{From: in.FromID, To: in.ToID, Key: in.Key}
	if i, ok := idx[k]; ok {
		mergeAttrs(p.Edges[in.Rel][i].Attrs, in.Attrs)
		return
	}
	idx[k] = len(p.Edges[in.Rel])
	p.Edges[in.Rel] = append(p.Edges[in.Rel], graph.EdgeRecord{FromID: in.FromID, ToID: in.ToID, Key: in.Key, Attrs: cloneAttrs(in.Attrs)})
}

func (p *Plan) HasNode(label graphschema.Label, id string) bool {
	_, ok := p.nodeIndex[label][id]
	return ok
}

func (p *Plan) NodeCount() int {
	n := 0
	for _, rows := range p.Nodes {
		n += len(rows)
	}
	return n
}

func (p *Plan) EdgeCount() int {
	n := 0
	for _, rows := range p.Edges {
		n += len(rows)
	}
	return n
}

// checkCompleteness enforces: every Order has exactly one PLACED and at
// least one CONTAINS; every Product has exactly one IN_CATEGORY.
func (p *Plan) checkCompleteness() error {
	placed := map[string]int{}
	for _, e := range p.Edges[graphschema.RelPlaced] {
		placed[e.ToID]++
	}
	lines := map[string]int{}
	for _, e := range p.Edges[graphschema.RelContains] {
		lines[e.FromID]++
	}
	for _, o := range p.Nodes[graphschema.LabelOrder] {
		if n := placed[o.ID]; n != 1 {
			return pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Order", o.ID, "placed by %d customers, want exactly one", n)
		}
		if lines[o.ID] == 0 {
			return pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Order", o.ID, "order has no line items")
		}
	}

	inCategory := map[string]int{}
	for _, e := range p.Edges[graphschema.RelInCategory] {
		inCategory[e.FromID]++
	}
	for _, prod := range p.Nodes[graphschema.LabelProduct] {
		if n := inCategory[prod.ID]; n != 1 {
			return pkgerrors.Row(pkgerrors.KindIntegrityViolation, "Product", prod.ID, "in %d categories, want exactly one", n)
		}
	}
	return nil
}

// CheckEndpoints resolves every edge against the plan's node index. It runs
// before any write; an edge naming a row that was never extracted is a bad
// foreign key on the source row that produced the edge.
func (p *Plan) CheckEndpoints() error {
	for _, r := range graphschema.Rels() {
		for _, e := range p.Edges[r.Type] {
			entity, rowID := edgeSource(r.Type, e)
			if !p.HasNode(r.From, e.FromID) {
				return pkgerrors.Row(pkgerrors.KindIntegrityViolation, entity, rowID, "references missing %s %s", r.From, e.FromID)
			}
			if !p.HasNode(r.To, e.ToID) {
				return pkgerrors.Row(pkgerrors.KindIntegrityViolation, entity, rowID, "references missing %s %s", r.To, e.ToID)
			}
		}
	}
	return nil
}

// edgeSource names the source entity and row an edge was mapped from.
func edgeSource(rt graphschema.RelType, e graph.EdgeRecord) (string, string) {
	switch rt {
	case graphschema.RelInCategory:
		return "Product", e.FromID
	case graphschema.RelPlaced:
		return "Order", e.ToID
	case graphschema.RelContains:
		return "OrderItem", e.FromID + "/" + e.ToID
	}
	return "Event", edgeRowID(e)
}

func edgeRowID(e graph.EdgeRecord) string {
	if e.Key != "" {
		return e.Key
	}
	return e.FromID + "->" + e.ToID
}

func cloneAttrs(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func mergeAttrs(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
