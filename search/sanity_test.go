package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckGraph(t *testing.T) {
	tests := []struct {
		name     string
		gen      *graph
		deadEnds [][]string
		cycles   [][]string
		ok       bool
		visited  int
	}{
		{
			name:    "clean",
			gen:     diamond(),
			ok:      true,
			visited: 6,
		},
		{
			name:     "dead end",
			gen:      newGraph("s").edge("s", "a", 1).edge("s", "g", 1).edge("a", "x", 1).goal("g"),
			deadEnds: [][]string{{"s", "a", "x"}},
			visited:  4,
		},
		{
			name:    "cycle",
			gen:     newGraph("a").edge("a", "b", 1).edge("b", "c", 1).edge("c", "a", 1).edge("c", "g", 1).goal("g"),
			cycles:  [][]string{{"a", "b", "c", "a"}},
			visited: 4,
		},
		{
			name:     "cycle without exit",
			gen:      newGraph("a").edge("a", "b", 1).edge("b", "a", 1),
			deadEnds: [][]string{{"a", "b"}},
			cycles:   [][]string{{"a", "b", "a"}},
			visited:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := CheckGraph[string, string](context.Background(), tt.gen, nil, 0)
			if err != nil {
				t.Fatal(err)
			}
			paths := func(fs []Finding[string]) [][]string {
				var out [][]string
				for _, f := range fs {
					out = append(out, f.Path)
				}
				return out
			}
			if diff := cmp.Diff(tt.deadEnds, paths(report.DeadEnds())); diff != "" {
				t.Errorf("dead ends (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.cycles, paths(report.Cycles())); diff != "" {
				t.Errorf("cycles (-want +got):\n%s", diff)
			}
			if report.OK() != tt.ok || report.Visited != tt.visited {
				t.Errorf("ok=%v visited=%d", report.OK(), report.Visited)
			}
		})
	}
}

func TestCheckGraph_Truncated(t *testing.T) {
	report, err := CheckGraph[int, string](context.Background(), lineGraph(1000), nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Truncated || report.Visited != 5 || report.OK() {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckGraph_EvaluatorPrunes(t *testing.T) {
	// The generator alone reports no problems; bounding the depth at 2
	// turns every depth-2 node of the tree into a dead end.
	report, err := CheckGraph[string, string](context.Background(), binaryTree(3), DeadEndBeyond(Constant[string, string](0), 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(report.DeadEnds()); got != 4 {
		t.Errorf("got %d dead ends, want 4: %v", got, report.Findings)
	}
}

func TestCheckGraph_GeneratorFailure(t *testing.T) {
	gen := GeneratorFuncs[int, string]{
		RootsFunc: func(context.Context) ([]int, error) { return []int{0}, nil },
		SuccessorsFunc: func(context.Context, int) ([]Successor[int, string], error) {
			return nil, errBoom
		},
	}
	_, err := CheckGraph[int, string](context.Background(), gen, nil, 0)
	if !errors.Is(err, ErrGeneratorFailure) || !errors.Is(err, errBoom) {
		t.Errorf("error = %v", err)
	}
}
