package search

import (
	"context"
	"errors"
)

// Evaluator assigns an f-value to the head of a path. Lower is better.
//
// An evaluator returns ErrDeadEnd (possibly wrapped) to declare that the node
// cannot lead to a solution. Any other error means the evaluation failed; the
// engine drops the node and continues.
//
// Evaluators see ancestors only through the path and must be safe for
// concurrent use when the search runs with parallelism greater than one.
// They may store intermediate results on the head node with SetAnnotation.
type Evaluator[N comparable, A any] interface {
	Evaluate(ctx context.Context, p Path[N, A]) (float64, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc[N comparable, A any] func(ctx context.Context, p Path[N, A]) (float64, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc[N, A]) Evaluate(ctx context.Context, p Path[N, A]) (float64, error) {
	return f(ctx, p)
}

// Constant returns an evaluator that scores every node with v. Combined with
// the FIFO tie-break it turns best-first search into breadth-first search.
func Constant[N comparable, A any](v float64) Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(context.Context, Path[N, A]) (float64, error) {
		return v, nil
	})
}

// Depth scores a node by its depth. Best-first search with this evaluator
// explores level by level.
func Depth[N comparable, A any]() Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(_ context.Context, p Path[N, A]) (float64, error) {
		return float64(p.Len() - 1), nil
	})
}

// Sum composes evaluators by adding their values. The first error wins.
func Sum[N comparable, A any](evals ...Evaluator[N, A]) Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(ctx context.Context, p Path[N, A]) (float64, error) {
		total := 0.0
		for _, e := range evals {
			v, err := e.Evaluate(ctx, p)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	})
}

// Fallback uses secondary when primary fails. Dead ends and context
// cancellation are not failures and are returned unchanged.
func Fallback[N comparable, A any](primary, secondary Evaluator[N, A]) Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(ctx context.Context, p Path[N, A]) (float64, error) {
		v, err := primary.Evaluate(ctx, p)
		if err == nil || errors.Is(err, ErrDeadEnd) || ctx.Err() != nil {
			return v, err
		}
		return secondary.Evaluate(ctx, p)
	})
}

// DeadEndBeyond wraps eval and declares every node deeper than maxDepth a
// dead end. It bounds searches over infinite graphs.
func DeadEndBeyond[N comparable, A any](eval Evaluator[N, A], maxDepth int) Evaluator[N, A] {
	return EvaluatorFunc[N, A](func(ctx context.Context, p Path[N, A]) (float64, error) {
		if p.Len()-1 > maxDepth {
			return 0, ErrDeadEnd
		}
		return eval.Evaluate(ctx, p)
	})
}
