package etl

import (
	"errors"
	"testing"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

func scenarioInstructions() []Instruction {
	return []Instruction{
		UpsertNode(graphschema.LabelCustomer, "C1", map[string]any{"name": "Ada"}),
		UpsertNode(graphschema.LabelCategory, "CAT1", map[string]any{"name": "Electronics"}),
		UpsertNode(graphschema.LabelProduct, "P1", map[string]any{"name": "Headphones", "price": 100.0}),
		UpsertEdge(graphschema.RelInCategory, "P1", "CAT1", "", nil),
		UpsertNode(graphschema.LabelOrder, "O1", nil),
		UpsertEdge(graphschema.RelPlaced, "C1", "O1", "", nil),
		UpsertEdge(graphschema.RelContains, "O1", "P1", "", map[string]any{"quantity": int64(1)}),
	}
}

func TestBuildPlanDeduplicatesLastWriteWins(t *testing.T) {
	instrs := append(scenarioInstructions(),
		UpsertNode(graphschema.LabelCustomer, "C1", map[string]any{"name": "Ada L."}),
		UpsertEdge(graphschema.RelContains, "O1", "P1", "", map[string]any{"quantity": int64(3)}),
	)
	p, err := BuildPlan(instrs)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if n := len(p.Nodes[graphschema.LabelCustomer]); n != 1 {
		t.Fatalf("customers: want=1 got=%d", n)
	}
	if got := p.Nodes[graphschema.LabelCustomer][0].Attrs["name"]; got != "Ada L." {
		t.Fatalf("name: want=%q got=%v", "Ada L.", got)
	}
	lines := p.Edges[graphschema.RelContains]
	if len(lines) != 1 || lines[0].Attrs["quantity"] != int64(3) {
		t.Fatalf("lines: got=%+v", lines)
	}
	if p.NodeCount() != 4 || p.EdgeCount() != 3 {
		t.Fatalf("counts: nodes=%d edges=%d", p.NodeCount(), p.EdgeCount())
	}
}

func TestBuildPlanRejectsEmptyOrder(t *testing.T) {
	instrs := append(scenarioInstructions(),
		UpsertNode(graphschema.LabelOrder, "O2", nil),
		UpsertEdge(graphschema.RelPlaced, "C1", "O2", "", nil),
	)
	_, err := BuildPlan(instrs)
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
}

func TestBuildPlanRejectsOrderWithTwoCustomers(t *testing.T) {
	instrs := append(scenarioInstructions(),
		UpsertNode(graphschema.LabelCustomer, "C2", nil),
		UpsertEdge(graphschema.RelPlaced, "C2", "O1", "", nil),
	)
	_, err := BuildPlan(instrs)
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
}

func TestCheckEndpointsRejectsUnknownForeignKey(t *testing.T) {
	instrs := append(scenarioInstructions(),
		UpsertEdge(graphschema.RelContains, "O1", "P404", "", map[string]any{"quantity": int64(1)}),
	)
	p, err := BuildPlan(instrs)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	err = p.CheckEndpoints()
	if !errors.Is(err, pkgerrors.ErrIntegrityViolation) {
		t.Fatalf("want integrity violation, got %v", err)
	}
	var pe *pkgerrors.Error
	if !errors.As(err, &pe) || pe.Entity != "OrderItem" || pe.RowID != "O1/P404" {
		t.Fatalf("want OrderItem O1/P404, got %+v", pe)
	}
}
