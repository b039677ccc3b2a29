package search

import "sort"

// Unlimited disables the discrepancy limit.
const Unlimited = -1

// ByDiscrepancy orders the frontier by (discrepancies, f, seq).
//
// At every expansion the children are ranked by f-value (ties keep generation
// order). The best child inherits the parent's discrepancy count; every other
// child counts one more discrepancy. Children above MaxDiscrepancies are
// pruned unless MaxDiscrepancies is Unlimited.
type ByDiscrepancy struct {
	MaxDiscrepancies int
}

// Less implements Ordering.
func (o ByDiscrepancy) Less(a, b Priority) bool {
	if a.Discrepancies != b.Discrepancies {
		return a.Discrepancies < b.Discrepancies
	}
	if a.F != b.F {
		return a.F < b.F
	}
	return a.Seq < b.Seq
}

// Rank implements Ordering.
func (o ByDiscrepancy) Rank(parent Priority, children []Priority) []Priority {
	order := make([]int, len(children))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return children[order[i]].F < children[order[j]].F
	})

	out := make([]Priority, len(children))
	copy(out, children)
	for rank, idx := range order {
		d := parent.Discrepancies
		if rank > 0 {
			d++
		}
		out[idx].Discrepancies = d
		out[idx].Pruned = o.MaxDiscrepancies != Unlimited && d > o.MaxDiscrepancies
	}
	return out
}

// WithMaxDiscrepancies switches the frontier to ByDiscrepancy with limit k.
func WithMaxDiscrepancies(k int) Option {
	return func(cfg *config) error {
		if k < 0 && k != Unlimited {
			return invalidOption("max discrepancies must be >= 0 or Unlimited, got %d", k)
		}
		cfg.ordering = ByDiscrepancy{MaxDiscrepancies: k}
		return nil
	}
}

// NewLimitedDiscrepancy creates a limited discrepancy search: paths that
// follow the evaluator's preferred child at every step are explored first,
// then paths with one deviation, and so on. Without WithMaxDiscrepancies the
// number of discrepancies is unlimited and the search stays complete.
func NewLimitedDiscrepancy[N comparable, A any](gen Generator[N, A], eval Evaluator[N, A], opts ...Option) (*Search[N, A], error) {
	all := append([]Option{WithMaxDiscrepancies(Unlimited)}, opts...)
	return New(gen, eval, all...)
}
