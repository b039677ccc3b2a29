package search

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by Next when no further solution exists: the
// frontier is empty, the expansion limit is reached, or (for MCTS) the
// iteration budget is spent. It is the normal end of a search.
var ErrExhausted = errors.New("search exhausted: no more solutions")

// ErrCanceled is returned once Cancel has been called or the caller's context
// has been canceled. Solutions yielded before cancellation remain valid.
var ErrCanceled = errors.New("search canceled")

// ErrSearchTimeout is returned when the wall-clock budget of the whole search
// (WithTimeout, or a deadline on the caller's context) is exceeded. It is
// distinct from a per-node evaluation timeout.
var ErrSearchTimeout = errors.New("search timed out")

// ErrGeneratorFailure is returned when the graph generator fails. The search
// cannot continue with a broken problem definition.
var ErrGeneratorFailure = errors.New("graph generator failed")

// ErrEvaluationFailed marks an evaluator that could not produce a value. The
// affected node is dropped; the search continues.
var ErrEvaluationFailed = errors.New("node evaluation failed")

// ErrEvaluationTimeout marks an evaluation that exceeded its per-node time
// budget. Every ErrEvaluationTimeout is also an ErrEvaluationFailed.
var ErrEvaluationTimeout = errors.New("node evaluation timed out")

// ErrDeadEnd is returned by an evaluator to declare that a node cannot lead
// to a solution. The node is dropped without being inserted into the frontier.
var ErrDeadEnd = errors.New("dead end")

// ErrInvalidOption is returned by constructors for invalid configuration.
var ErrInvalidOption = errors.New("invalid option")

// Error codes carried by SearchError.
const (
	CodeEvalTimeout     = "EVAL_TIMEOUT"
	CodeEvalFailed      = "EVAL_FAILED"
	CodeGeneratorFailed = "GENERATOR_FAILED"
	CodeSearchTimeout   = "SEARCH_TIMEOUT"
	CodeCanceled        = "CANCELED"
	CodeInvalidOption   = "INVALID_OPTION"
)

// SearchError is the structured error type of this package.
//
// Each code matches one sentinel through errors.Is, so callers can branch on
// the outcome without inspecting codes:
//
//	sol, err := s.Next(ctx)
//	switch {
//	case errors.Is(err, search.ErrExhausted):    // done
//	case errors.Is(err, search.ErrCanceled):     // Cancel() was called
//	case errors.Is(err, search.ErrSearchTimeout):
//	case errors.Is(err, search.ErrGeneratorFailure):
//	}
type SearchError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code.
	Code string

	// NodeID is the node involved, NoNode if none.
	NodeID NodeID

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.NodeID != NoNode {
		msg = fmt.Sprintf("%s (node %d)", msg, e.NodeID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is maps error codes to the package sentinels.
func (e *SearchError) Is(target error) bool {
	switch e.Code {
	case CodeEvalTimeout:
		return target == ErrEvaluationTimeout || target == ErrEvaluationFailed
	case CodeEvalFailed:
		return target == ErrEvaluationFailed
	case CodeGeneratorFailed:
		return target == ErrGeneratorFailure
	case CodeSearchTimeout:
		return target == ErrSearchTimeout
	case CodeCanceled:
		return target == ErrCanceled
	case CodeInvalidOption:
		return target == ErrInvalidOption
	}
	return false
}

func newError(code string, id NodeID, cause error, format string, args ...any) *SearchError {
	return &SearchError{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		NodeID:  id,
		Cause:   cause,
	}
}

func invalidOption(format string, args ...any) error {
	return newError(CodeInvalidOption, NoNode, nil, format, args...)
}
