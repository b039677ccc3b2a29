package search

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EvaluateWithTimeout runs eval on p with a time budget.
//
// The evaluator runs on its own goroutine and the call returns as soon as the
// evaluator finishes, the budget expires or ctx is done. On expiry the
// evaluator is abandoned: it keeps running until it observes its context, but
// its result is ignored and a *SearchError with code EVAL_TIMEOUT is returned.
// A timeout of 0 means no budget; the call still returns promptly when ctx is
// canceled. Without a budget and with a context that can never be canceled the
// evaluator runs on the calling goroutine.
//
// A panicking evaluator is reported as EVAL_FAILED.
func EvaluateWithTimeout[N comparable, A any](ctx context.Context, eval Evaluator[N, A], p Path[N, A], timeout time.Duration) (float64, error) {
	id := NoNode
	if h := p.Head(); h != nil {
		id = h.ID()
	}

	if timeout <= 0 && ctx.Done() == nil {
		return safeEvaluate(ctx, eval, p, id)
	}

	var (
		evalCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		evalCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		evalCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	type result struct {
		f   float64
		err error
	}
	done := make(chan result, 1)
	go func() {
		f, err := safeEvaluate(evalCtx, eval, p, id)
		done <- result{f, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
			return 0, timeoutError(id, timeout)
		}
		return r.f, r.err
	case <-evalCtx.Done():
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 0, timeoutError(id, timeout)
	}
}

func timeoutError(id NodeID, timeout time.Duration) error {
	return newError(CodeEvalTimeout, id, context.DeadlineExceeded, "evaluation exceeded timeout of %v", timeout)
}

func safeEvaluate[N comparable, A any](ctx context.Context, eval Evaluator[N, A], p Path[N, A], id NodeID) (f float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(CodeEvalFailed, id, fmt.Errorf("panic: %v", r), "evaluator panicked")
		}
	}()
	return eval.Evaluate(ctx, p)
}
