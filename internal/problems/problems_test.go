package problems

import (
	"context"
	"testing"

	"github.com/dshills/searchgraph-go/search"
)

func TestPathGraph(t *testing.T) {
	g := PathGraph{N: 3}
	succs, err := g.Successors(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(succs) != 1 || succs[0].Node != 2 {
		t.Errorf("Successors(1) = %v, want [2]", succs)
	}
	if succs, _ := g.Successors(context.Background(), 3); len(succs) != 0 {
		t.Errorf("Successors(N) = %v, want none", succs)
	}
	if !g.IsGoal(3) || g.IsGoal(2) {
		t.Error("only N is a goal")
	}
	if h := g.Heuristic(1); h != 2 {
		t.Errorf("Heuristic(1) = %v, want 2", h)
	}
}

func TestBinaryTree(t *testing.T) {
	tree := BinaryTree{Depth: 2}
	succs, _ := tree.Successors(context.Background(), "1")
	if len(succs) != 2 || succs[0].Node != "10" || succs[1].Node != "11" {
		t.Errorf("Successors(\"1\") = %v", succs)
	}
	if !tree.IsGoal("01") || tree.IsGoal("0") {
		t.Error("leaves at depth 2 are goals")
	}
}

func TestSeededValues(t *testing.T) {
	ctx := context.Background()
	a := SeededValues[string, string](7)
	b := SeededValues[string, string](7)
	c := SeededValues[string, string](8)

	p := search.NewPath[string, string]("", search.Successor[string, string]{Edge: "0", Node: "0"})
	va, _ := a.Evaluate(ctx, p)
	vb, _ := b.Evaluate(ctx, p)
	vc, _ := c.Evaluate(ctx, p)
	if va != vb {
		t.Errorf("same seed gave %v and %v", va, vb)
	}
	if va == vc {
		t.Errorf("different seeds gave the same value %v", va)
	}
	if va < 0 || va >= 1 {
		t.Errorf("value %v outside [0, 1)", va)
	}
}

func TestParseGrid(t *testing.T) {
	g, err := ParseGrid([]string{
		"S.#",
		"..#",
		"#.G",
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Start != (Point{0, 0}) || g.Goal != (Point{2, 2}) {
		t.Errorf("start %v goal %v", g.Start, g.Goal)
	}
	succs, _ := g.Successors(context.Background(), Point{1, 1})
	got := map[string]Point{}
	for _, s := range succs {
		got[s.Edge] = s.Node
	}
	if len(got) != 3 || got["N"] != (Point{1, 0}) || got["S"] != (Point{1, 2}) || got["W"] != (Point{0, 1}) {
		t.Errorf("Successors((1,1)) = %v", got)
	}
	if h := g.Manhattan(Point{0, 0}); h != 4 {
		t.Errorf("Manhattan(start) = %v, want 4", h)
	}

	if _, err := ParseGrid([]string{"S..", ".."}); err == nil {
		t.Error("expected error for ragged rows")
	}
	if _, err := ParseGrid([]string{"..."}); err == nil {
		t.Error("expected error without start and goal")
	}
}

func TestNQueens(t *testing.T) {
	q := NQueens{N: 4}
	succs, _ := q.Successors(context.Background(), "1")
	if len(succs) != 1 || succs[0].Node != "1,3" {
		t.Errorf("Successors(\"1\") = %v, want [1,3]", succs)
	}
	if !q.IsGoal("1,3,0,2") {
		t.Error("1,3,0,2 is a solution")
	}
	if cols := Columns("2,0"); len(cols) != 2 || cols[0] != 2 || cols[1] != 0 {
		t.Errorf("Columns = %v", cols)
	}
}
