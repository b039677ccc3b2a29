package search

import "context"

// Successor is one outgoing edge of a node: the edge label and the child label.
type Successor[N comparable, A any] struct {
	Edge A
	Node N
}

// Generator defines a search problem over an implicit graph.
//
// Implementations must be free of search-visible side effects: the engine may
// call Successors for different nodes concurrently and may call any method
// more than once for the same label. Successors must return a finite slice even
// when the graph itself is infinite.
//
// Errors returned by Roots or Successors are treated as a broken problem
// definition and end the search with ErrGeneratorFailure.
type Generator[N comparable, A any] interface {
	// Roots returns one or more root labels.
	Roots(ctx context.Context) ([]N, error)

	// Successors returns the outgoing edges of n.
	Successors(ctx context.Context, n N) ([]Successor[N, A], error)

	// IsGoal reports whether n is a goal. It must be a pure predicate.
	IsGoal(n N) bool
}

// PathGoalTester is implemented by generators whose goal test depends on the
// whole path rather than on the head label alone. When present it replaces
// IsGoal for nodes generated by the engine.
type PathGoalTester[N comparable, A any] interface {
	IsGoalPath(p Path[N, A]) bool
}

// GeneratorFuncs adapts plain functions to the Generator interface.
//
// Example:
//
//	gen := search.GeneratorFuncs[int, string]{
//	    RootsFunc: func(context.Context) ([]int, error) { return []int{0}, nil },
//	    SuccessorsFunc: func(_ context.Context, n int) ([]search.Successor[int, string], error) {
//	        return []search.Successor[int, string]{{Edge: "inc", Node: n + 1}}, nil
//	    },
//	    IsGoalFunc: func(n int) bool { return n == 10 },
//	}
type GeneratorFuncs[N comparable, A any] struct {
	RootsFunc      func(ctx context.Context) ([]N, error)
	SuccessorsFunc func(ctx context.Context, n N) ([]Successor[N, A], error)
	IsGoalFunc     func(n N) bool
}

// Roots implements Generator.
func (g GeneratorFuncs[N, A]) Roots(ctx context.Context) ([]N, error) {
	return g.RootsFunc(ctx)
}

// Successors implements Generator.
func (g GeneratorFuncs[N, A]) Successors(ctx context.Context, n N) ([]Successor[N, A], error) {
	return g.SuccessorsFunc(ctx, n)
}

// IsGoal implements Generator.
func (g GeneratorFuncs[N, A]) IsGoal(n N) bool {
	if g.IsGoalFunc == nil {
		return false
	}
	return g.IsGoalFunc(n)
}

// rootedGenerator restricts a generator to a single root. The rollout
// evaluator uses it to run nested searches below an arbitrary node. prefix is
// the path from the outer root to root; path goal tests see it joined onto
// the nested path.
type rootedGenerator[N comparable, A any] struct {
	Generator[N, A]
	root   N
	prefix Path[N, A]
}

func (g rootedGenerator[N, A]) Roots(context.Context) ([]N, error) {
	return []N{g.root}, nil
}

func (g rootedGenerator[N, A]) IsGoalPath(p Path[N, A]) bool {
	if _, ok := g.Generator.(PathGoalTester[N, A]); !ok {
		return g.IsGoal(p.Head().Label())
	}
	full, err := Join(g.prefix, p)
	if err != nil {
		return false
	}
	return IsGoalPath(g.Generator, full)
}

// IsGoalPath applies gen's goal test to the head of p: IsGoalPath when gen
// implements PathGoalTester, IsGoal on the head label otherwise.
func IsGoalPath[N comparable, A any](gen Generator[N, A], p Path[N, A]) bool {
	if pg, ok := gen.(PathGoalTester[N, A]); ok {
		return pg.IsGoalPath(p)
	}
	return gen.IsGoal(p.Head().Label())
}
