package dag

import (
	"testing"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

func obj(name string) *graph.SchemaObject {
	return &graph.SchemaObject{
		ID:   graph.NewID(),
		Name: graph.QualifiedName{name},
		Kind: graph.KindTable,
	}
}

func rel(src, dst *graph.SchemaObject) *graph.Relationship {
	return &graph.Relationship{
		ID:          graph.NewID(),
		SourceID:    src.ID,
		TargetID:    dst.ID,
		Cardinality: graph.OneToMany,
	}
}

func TestFromResult(t *testing.T) {
	customers := obj("customers")
	orders := obj("orders")
	items := obj("order_items")
	res := &graph.Result{
		Objects: []*graph.SchemaObject{customers, orders, items},
		Relationships: []*graph.Relationship{
			rel(orders, customers),
			rel(items, orders),
		},
	}

	g := FromResult(res)
	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected 2 edges, got %d", g.EdgeCount())
	}

	deps := g.Dependencies("orders")
	if len(deps) != 1 || deps[0] != "customers" {
		t.Errorf("expected orders to depend on customers, got %v", deps)
	}
	dependents := g.Dependents("orders")
	if len(dependents) != 1 || dependents[0] != "order_items" {
		t.Errorf("expected order_items to depend on orders, got %v", dependents)
	}
}

func TestFromResultSkipsSelfReference(t *testing.T) {
	employees := obj("employees")
	res := &graph.Result{
		Objects:       []*graph.SchemaObject{employees},
		Relationships: []*graph.Relationship{rel(employees, employees)},
	}

	g := FromResult(res)
	if g.EdgeCount() != 0 {
		t.Errorf("expected self-reference to be skipped, got %d edges", g.EdgeCount())
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	g.AddNode("a", obj("a"))

	if err := g.AddEdge("a", "missing"); err == nil {
		t.Error("expected error for missing dependent")
	}
	if err := g.AddEdge("missing", "a"); err == nil {
		t.Error("expected error for missing dependency")
	}
	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := New()
	g.AddNode("a", obj("a"))
	g.AddNode("b", obj("b"))

	for i := 0; i < 3; i++ {
		if err := g.AddEdge("a", "b"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge after duplicate adds, got %d", g.EdgeCount())
	}
}

func TestHasCycle(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, obj(id))
	}
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	if cyclic, _ := g.HasCycle(); cyclic {
		t.Fatal("expected no cycle")
	}

	g.AddEdge("c", "a")
	cyclic, cycle := g.HasCycle()
	if !cyclic {
		t.Fatal("expected cycle")
	}
	if len(cycle) < 3 {
		t.Errorf("expected cycle path, got %v", cycle)
	}
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	for _, id := range []string{"customers", "orders", "order_items"} {
		g.AddNode(id, obj(id))
	}
	g.AddEdge("customers", "orders")
	g.AddEdge("orders", "order_items")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(order))
	}

	pos := make(map[string]int)
	for i, node := range order {
		pos[node.ID] = i
	}
	if pos["customers"] > pos["orders"] || pos["orders"] > pos["order_items"] {
		t.Errorf("dependencies out of order: %v", pos)
	}
}

func TestTopologicalSortCycleError(t *testing.T) {
	g := New()
	g.AddNode("a", obj("a"))
	g.AddNode("b", obj("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected cycle error")
	}
}

func TestLevels(t *testing.T) {
	g := New()
	for _, id := range []string{"customers", "products", "orders", "order_items"} {
		g.AddNode(id, obj(id))
	}
	g.AddEdge("customers", "orders")
	g.AddEdge("orders", "order_items")
	g.AddEdge("products", "order_items")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}

	want := [][]string{
		{"customers", "products"},
		{"orders"},
		{"order_items"},
	}
	for i, level := range want {
		if len(levels[i]) != len(level) {
			t.Fatalf("level %d: expected %v, got %v", i, level, levels[i])
		}
		for j, id := range level {
			if levels[i][j] != id {
				t.Errorf("level %d: expected %v, got %v", i, level, levels[i])
			}
		}
	}
}

func TestLevelsEmptyGraph(t *testing.T) {
	levels, err := New().Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if levels != nil {
		t.Errorf("expected nil levels, got %v", levels)
	}
}
