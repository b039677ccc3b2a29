package search

import "context"

// CostFunc returns the cost of the edge from one label to another.
type CostFunc[N comparable, A any] func(from N, edge A, to N) float64

// Heuristic estimates the remaining cost from n to the nearest goal.
type Heuristic[N comparable] func(n N) float64

// AStarEvaluator scores a path with g + h, where g is the accumulated edge
// cost and h the heuristic estimate of the head.
//
// g is computed incrementally: the evaluator reads the parent's "g"
// annotation and adds one edge cost. Paths whose ancestors carry no "g"
// annotation (for example detached paths built with NewPath) are summed from
// the root once. Both values are stored as annotations on the head.
func AStarEvaluator[N comparable, A any](cost CostFunc[N, A], h Heuristic[N]) Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(_ context.Context, p Path[N, A]) (float64, error) {
		head := p.Head()
		g := pathCost(p, cost)
		hv := 0.0
		if h != nil {
			hv = h(head.Label())
		}
		head.SetAnnotation(AnnotationG, g)
		head.SetAnnotation(AnnotationH, hv)
		return g + hv, nil
	})
}

func pathCost[N comparable, A any](p Path[N, A], cost CostFunc[N, A]) float64 {
	n := p.Len()
	if n <= 1 {
		return 0
	}
	head, parent := p.At(n-1), p.At(n-2)
	if pg, ok := parent.FloatAnnotation(AnnotationG); ok {
		return pg + cost(parent.Label(), head.Edge(), head.Label())
	}
	g := 0.0
	for i := 1; i < n; i++ {
		g += cost(p.At(i-1).Label(), p.At(i).Edge(), p.At(i).Label())
	}
	return g
}

// NewAStar creates a best-first search ordered by g + h.
//
// The first solution has minimum cost only if h is admissible and consistent
// and edge costs are non-negative. The engine does not check this. Use
// WithParentDiscarding(DiscardAll) for graph search; with DiscardOpen or
// DiscardAll a cheaper path to an open label re-parents the open node.
func NewAStar[N comparable, A any](gen Generator[N, A], cost CostFunc[N, A], h Heuristic[N], opts ...Option) (*Search[N, A], error) {
	if cost == nil {
		return nil, invalidOption("cost function must not be nil")
	}
	return New(gen, AStarEvaluator(cost, h), opts...)
}

// UnitCost charges 1 for every edge.
func UnitCost[N comparable, A any](N, A, N) float64 { return 1 }
