package search

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RolloutOptions configures a RandomCompletion evaluator.
type RolloutOptions struct {
	// Samples is the number of randomized completions per evaluation.
	// Default: 3.
	Samples int

	// Horizon bounds the depth of a completion below the evaluated node.
	// Nodes deeper than Horizon are dead ends for the completion. 0 means no
	// horizon; MaxExpansions still bounds each completion.
	Horizon int

	// Seed makes completions reproducible. Two evaluations of paths with the
	// same labels and the same Seed draw the same completions.
	Seed uint64

	// Timeout bounds one whole evaluation (all samples). 0 means no limit.
	Timeout time.Duration

	// MaxExpansions bounds the nested search of one completion.
	// Default: 1000.
	MaxExpansions int
}

// RandomCompletion estimates the value of a node by completing its path to a
// goal several times at random and scoring the completed paths.
//
// Each completion is a nested best-first search rooted at the evaluated node
// whose evaluator prefers deeper nodes with random tie-breaking, so it dives
// towards a goal and backtracks out of dead ends. Cancellation and deadlines
// of the caller's context apply to the nested searches.
//
// The evaluation returns the best (minimum) score. The mean, the standard
// deviation and the number of successful completions are stored on the head
// node as the annotations rollout_mean, rollout_stddev and rollout_samples.
// When no completion reaches a goal the node is a dead end.
type RandomCompletion[N comparable, A any] struct {
	gen    Generator[N, A]
	scorer Evaluator[N, A]
	opts   RolloutOptions
}

var _ Evaluator[int, int] = (*RandomCompletion[int, int])(nil)

// NewRandomCompletion creates a randomized completion evaluator. scorer
// scores complete root-to-goal paths.
func NewRandomCompletion[N comparable, A any](gen Generator[N, A], scorer Evaluator[N, A], opts RolloutOptions) *RandomCompletion[N, A] {
	if opts.Samples <= 0 {
		opts.Samples = 3
	}
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = 1000
	}
	return &RandomCompletion[N, A]{gen: gen, scorer: scorer, opts: opts}
}

// Evaluate implements Evaluator.
func (r *RandomCompletion[N, A]) Evaluate(ctx context.Context, p Path[N, A]) (float64, error) {
	head := p.Head()
	if head == nil {
		return 0, ErrDeadEnd
	}
	if IsGoalPath(r.gen, p) {
		return r.scorer.Evaluate(ctx, p)
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	rng := rand.New(rand.NewPCG(r.seedFor(p)))
	scores := make([]float64, 0, r.opts.Samples)
	for i := 0; i < r.opts.Samples; i++ {
		completion, err := r.complete(ctx, p, rng.Uint64())
		switch {
		case err == nil:
		case errors.Is(err, ErrExhausted):
			continue
		case errors.Is(err, ErrSearchTimeout):
			return 0, newError(CodeEvalTimeout, head.ID(), err, "randomized completion exceeded timeout of %v", r.opts.Timeout)
		case errors.Is(err, ErrCanceled):
			return 0, ctx.Err()
		default:
			return 0, newError(CodeEvalFailed, head.ID(), err, "randomized completion failed")
		}

		full, err := Join(p, completion)
		if err != nil {
			return 0, newError(CodeEvalFailed, head.ID(), err, "joining completion")
		}
		score, err := r.scorer.Evaluate(ctx, full)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			continue
		}
		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return 0, ErrDeadEnd
	}
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		std = 0
	}
	head.SetAnnotation(AnnotationRolloutMean, mean)
	head.SetAnnotation(AnnotationRolloutStdDev, std)
	head.SetAnnotation(AnnotationRolloutSamples, float64(len(scores)))
	return floats.Min(scores), nil
}

// complete runs one randomized completion below the head of prefix and returns
// the path from that head to the goal it reached.
func (r *RandomCompletion[N, A]) complete(ctx context.Context, prefix Path[N, A], seed uint64) (Path[N, A], error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	horizon := r.opts.Horizon
	dive := EvaluatorFunc[N, A](func(_ context.Context, p Path[N, A]) (float64, error) {
		depth := p.Len() - 1
		if horizon > 0 && depth > horizon {
			return 0, ErrDeadEnd
		}
		return -float64(depth) + rng.Float64(), nil
	})

	s, err := New(rootedGenerator[N, A]{Generator: r.gen, root: prefix.Head().Label(), prefix: prefix}, Evaluator[N, A](dive),
		WithMaxExpansions(r.opts.MaxExpansions),
		WithRunID("rollout"),
	)
	if err != nil {
		return Path[N, A]{}, err
	}
	sol, err := s.Next(ctx)
	if err != nil {
		return Path[N, A]{}, err
	}
	s.Cancel()
	return sol.Path, nil
}

// seedFor derives a per-path seed from the configured seed and the path's
// labels, so evaluation order and parallelism do not change the draws.
func (r *RandomCompletion[N, A]) seedFor(p Path[N, A]) (uint64, uint64) {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], r.opts.Seed)
	h.Write(buf[:])
	for _, label := range p.Labels() {
		fmt.Fprintf(h, "%v\x00", label)
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}
