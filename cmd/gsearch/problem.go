package main

import (
	"context"
	"fmt"

	"github.com/dshills/searchgraph-go/internal/problems"
	"github.com/dshills/searchgraph-go/search"
)

// problem bundles a generator with the heuristic used by A* and the
// evaluator used by the other algorithms.
type problem[N comparable, A any] struct {
	gen       search.Generator[N, A]
	heuristic search.Heuristic[N]
	eval      search.Evaluator[N, A]
}

// defaultMaze is used by the grid problem when no maze is configured.
var defaultMaze = []string{
	"S...#....",
	".##.#.##.",
	".#..#..#.",
	".#.###.#.",
	".#.....#G",
}

// greedy scores a path by the heuristic value of its head.
func greedy[N comparable, A any](h search.Heuristic[N]) search.Evaluator[N, A] {
	return search.EvaluatorFunc[N, A](func(_ context.Context, p search.Path[N, A]) (float64, error) {
		return h(p.Head().Label()), nil
	})
}

func pathProblem(cfg RunConfig) problem[int, string] {
	g := problems.PathGraph{N: cfg.Size}
	return problem[int, string]{gen: g, heuristic: g.Heuristic, eval: greedy[int, string](g.Heuristic)}
}

func treeProblem(cfg RunConfig) problem[string, string] {
	t := problems.BinaryTree{Depth: cfg.Size}
	return problem[string, string]{
		gen:       t,
		heuristic: func(n string) float64 { return float64(t.Depth - len(n)) },
		eval:      problems.SeededValues[string, string](cfg.Seed),
	}
}

func gridProblem(cfg RunConfig) (problem[problems.Point, string], error) {
	var (
		g   *problems.Grid
		err error
	)
	if len(cfg.Maze) > 0 {
		g, err = problems.ParseGrid(cfg.Maze)
	} else {
		g, err = problems.ParseGrid(defaultMaze)
	}
	if err != nil {
		return problem[problems.Point, string]{}, fmt.Errorf("grid: %w", err)
	}
	return problem[problems.Point, string]{gen: g, heuristic: g.Manhattan, eval: greedy[problems.Point, string](g.Manhattan)}, nil
}

func queensProblem(cfg RunConfig) problem[string, int] {
	q := problems.NQueens{N: cfg.Size}
	remaining := func(b string) float64 { return float64(q.N - len(problems.Columns(b))) }
	return problem[string, int]{gen: q, heuristic: remaining, eval: greedy[string, int](remaining)}
}
