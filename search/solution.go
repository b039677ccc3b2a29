package search

import (
	"context"
	"fmt"
	"iter"
)

// Solution is a goal path yielded by a search.
type Solution[N comparable, A any] struct {
	// Path runs from a root to the goal node.
	Path Path[N, A]

	// Score is the goal node's f-value.
	Score float64

	// Ordinal is the 1-based position of this solution in the sequence
	// yielded by its search.
	Ordinal int
}

// Goal returns the goal node.
func (s Solution[N, A]) Goal() *Node[N, A] { return s.Path.Head() }

// Cost returns the accumulated path cost recorded by a cost-aware evaluator
// such as the A* evaluator. ok is false when no cost was recorded.
func (s Solution[N, A]) Cost() (float64, bool) {
	if s.Path.Empty() {
		return 0, false
	}
	return s.Path.Head().FloatAnnotation(AnnotationG)
}

// String implements fmt.Stringer.
func (s Solution[N, A]) String() string {
	return fmt.Sprintf("solution #%d score=%g: %s", s.Ordinal, s.Score, s.Path)
}

// State is the lifecycle state of a search instance.
type State int32

const (
	// StateCreated is the state before the first Next or HasNext.
	StateCreated State = iota
	// StateActive means roots have been inserted and the loop is running.
	StateActive
	// StateTerminated means the search ran out of solutions.
	StateTerminated
	// StateCanceled means Cancel was called or the caller's context ended.
	StateCanceled
	// StateFailed means a search timeout or a generator failure.
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Done reports whether s is a final state.
func (s State) Done() bool {
	return s == StateTerminated || s == StateCanceled || s == StateFailed
}

// Stats is a snapshot of search counters.
type Stats struct {
	Expansions         int
	Generated          int
	Added              int
	Removed            int
	DeadEnds           int
	EvaluationFailures int
	EvaluationTimeouts int
	ParentSwitches     int
	Solutions          int
	FrontierSize       int
	Nodes              int
}

// Searcher is the pull-based solution enumerator shared by the best-first
// engine and the Monte-Carlo tree search.
type Searcher[N comparable, A any] interface {
	// Next advances the search until a solution is found and returns it.
	// At the end of the search it returns ErrExhausted, ErrCanceled,
	// ErrSearchTimeout or ErrGeneratorFailure.
	Next(ctx context.Context) (Solution[N, A], error)

	// HasNext reports whether Next would return a solution. The solution is
	// computed and buffered for the following Next call.
	HasNext(ctx context.Context) bool

	// Solutions iterates over the remaining solutions. Normal exhaustion ends
	// the iteration silently; any other outcome is yielded as an error.
	Solutions(ctx context.Context) iter.Seq2[Solution[N, A], error]

	// Cancel requests cooperative shutdown. It is safe to call from any
	// goroutine and more than once.
	Cancel()

	// State returns the lifecycle state.
	State() State

	// Err returns the error that ended the search, or nil if it is still
	// running or ran out of solutions.
	Err() error
}
