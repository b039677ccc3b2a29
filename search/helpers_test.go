package search

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/searchgraph-go/search/emit"
)

// graph is an explicit weighted digraph used as a test problem.
type graph struct {
	roots []string
	edges map[string][]wedge
	goals map[string]bool
}

type wedge struct {
	to   string
	cost float64
}

func newGraph(roots ...string) *graph {
	return &graph{roots: roots, edges: map[string][]wedge{}, goals: map[string]bool{}}
}

func (g *graph) edge(from, to string, cost float64) *graph {
	g.edges[from] = append(g.edges[from], wedge{to, cost})
	return g
}

func (g *graph) goal(labels ...string) *graph {
	for _, l := range labels {
		g.goals[l] = true
	}
	return g
}

func (g *graph) Roots(context.Context) ([]string, error) { return g.roots, nil }

func (g *graph) Successors(_ context.Context, n string) ([]Successor[string, string], error) {
	var out []Successor[string, string]
	for _, e := range g.edges[n] {
		out = append(out, Successor[string, string]{Edge: n + ">" + e.to, Node: e.to})
	}
	return out, nil
}

func (g *graph) IsGoal(n string) bool { return g.goals[n] }

func (g *graph) cost(from, _, to string) float64 {
	for _, e := range g.edges[from] {
		if e.to == to {
			return e.cost
		}
	}
	return 0
}

// lineGraph is 0 -> 1 -> ... -> n with the goal at n.
func lineGraph(n int) GeneratorFuncs[int, string] {
	return GeneratorFuncs[int, string]{
		RootsFunc: func(context.Context) ([]int, error) { return []int{0}, nil },
		SuccessorsFunc: func(_ context.Context, i int) ([]Successor[int, string], error) {
			if i >= n {
				return nil, nil
			}
			return []Successor[int, string]{{Edge: "next", Node: i + 1}}, nil
		},
		IsGoalFunc: func(i int) bool { return i == n },
	}
}

// binaryTree has bit-string labels; leaves at depth d are goals.
func binaryTree(d int) GeneratorFuncs[string, string] {
	return GeneratorFuncs[string, string]{
		RootsFunc: func(context.Context) ([]string, error) { return []string{""}, nil },
		SuccessorsFunc: func(_ context.Context, n string) ([]Successor[string, string], error) {
			if len(n) >= d {
				return nil, nil
			}
			return []Successor[string, string]{{Edge: "0", Node: n + "0"}, {Edge: "1", Node: n + "1"}}, nil
		},
		IsGoalFunc: func(n string) bool { return len(n) == d },
	}
}

// goalAtLength is the chain 0 -> 1 -> 2 -> 3 -> 4 whose goal test counts the
// nodes of the path instead of looking at labels.
type goalAtLength struct {
	n int
}

func (goalAtLength) Roots(context.Context) ([]int, error) { return []int{0}, nil }

func (goalAtLength) Successors(_ context.Context, i int) ([]Successor[int, string], error) {
	if i >= 4 {
		return nil, nil
	}
	return []Successor[int, string]{{Edge: "next", Node: i + 1}}, nil
}

func (goalAtLength) IsGoal(int) bool { return false }

func (g goalAtLength) IsGoalPath(p Path[int, string]) bool { return p.Len() == g.n }

// drain collects every solution until the search ends.
func drain[N comparable, A any](t *testing.T, s Searcher[N, A]) []Solution[N, A] {
	t.Helper()
	var out []Solution[N, A]
	for sol, err := range s.Solutions(context.Background()) {
		if err != nil {
			t.Fatalf("search failed after %d solutions: %v", len(out), err)
		}
		out = append(out, sol)
	}
	return out
}

func labelsOf[N comparable, A any](sols []Solution[N, A]) [][]N {
	out := make([][]N, len(sols))
	for i, s := range sols {
		out[i] = s.Path.Labels()
	}
	return out
}

func eventsOfType(events []emit.Event, typ emit.Type) []emit.Event {
	var out []emit.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// recorder collects events in order.
type recorder struct {
	events []emit.Event
}

func (r *recorder) Emit(e emit.Event) { r.events = append(r.events, e) }

var errBoom = errors.New("boom")
