package search

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/searchgraph-go/search/emit"
)

// Option is a functional option for configuring a Search.
//
// Options are validated when the search is constructed; New returns an error
// with code INVALID_OPTION for out-of-range values.
//
// Example:
//
//	s, err := search.New(gen, eval,
//	    search.WithParentDiscarding(search.DiscardAll),
//	    search.WithParallelism(8),
//	    search.WithEvaluationTimeout(200*time.Millisecond),
//	)
type Option func(*config) error

type config struct {
	discarding    ParentDiscarding
	evalTimeout   time.Duration
	fallback      float64
	hasFallback   bool
	parallelism   int
	timeout       time.Duration
	maxExpansions int
	expandGoals   bool
	ordering      Ordering
	runID         string
	logger        *slog.Logger
	metrics       *Metrics
	listeners     []emit.Emitter
}

func defaultConfig() config {
	return config{
		discarding:  DiscardNone,
		parallelism: 1,
		ordering:    ByFValue{},
	}
}

func buildConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg, nil
}

// WithParentDiscarding sets the policy for labels reached by several paths.
//
// Default: DiscardNone (tree search).
func WithParentDiscarding(p ParentDiscarding) Option {
	return func(cfg *config) error {
		if !p.valid() {
			return invalidOption("unknown parent discarding policy %d", int(p))
		}
		cfg.discarding = p
		return nil
	}
}

// WithEvaluationTimeout bounds every evaluator invocation. A node whose
// evaluation exceeds d is treated as evaluation-failed (or receives the
// fallback value, see WithTimeoutFallback). The evaluator goroutine is
// abandoned, not killed; it only stops being waited on.
//
// Default: 0 (no limit).
func WithEvaluationTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return invalidOption("evaluation timeout must be >= 0, got %v", d)
		}
		cfg.evalTimeout = d
		return nil
	}
}

// WithTimeoutFallback assigns f to nodes whose evaluation timed out instead of
// dropping them.
func WithTimeoutFallback(f float64) Option {
	return func(cfg *config) error {
		cfg.fallback = f
		cfg.hasFallback = true
		return nil
	}
}

// WithParallelism sets how many children of one expansion are evaluated
// concurrently. Results are applied in generation order regardless.
//
// Default: 1 (sequential).
func WithParallelism(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return invalidOption("parallelism must be >= 1, got %d", n)
		}
		cfg.parallelism = n
		return nil
	}
}

// WithTimeout sets a wall-clock budget for the whole search, measured from
// activation. Exceeding it ends the search with ErrSearchTimeout.
//
// Default: 0 (no limit).
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return invalidOption("timeout must be >= 0, got %v", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithMaxExpansions ends the search with ErrExhausted after n expansions.
//
// Default: 0 (no limit).
func WithMaxExpansions(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return invalidOption("max expansions must be >= 0, got %d", n)
		}
		cfg.maxExpansions = n
		return nil
	}
}

// WithExpandGoals lets the engine expand goal nodes after yielding them, for
// problems where a goal can be strictly extended to further goals.
func WithExpandGoals(enabled bool) Option {
	return func(cfg *config) error {
		cfg.expandGoals = enabled
		return nil
	}
}

// WithOrdering replaces the frontier ordering.
func WithOrdering(o Ordering) Option {
	return func(cfg *config) error {
		if o == nil {
			return invalidOption("ordering must not be nil")
		}
		cfg.ordering = o
		return nil
	}
}

// WithRunID sets the identifier attached to emitted events and metrics.
//
// Default: a random UUID.
func WithRunID(id string) Option {
	return func(cfg *config) error {
		cfg.runID = id
		return nil
	}
}

// WithLogger sets the structured logger.
//
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l
		return nil
	}
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) error {
		cfg.metrics = m
		return nil
	}
}

// WithListener registers an event listener at construction time.
// Equivalent to calling RegisterListener before the first Next.
func WithListener(l emit.Emitter) Option {
	return func(cfg *config) error {
		if l == nil {
			return invalidOption("listener must not be nil")
		}
		cfg.listeners = append(cfg.listeners, l)
		return nil
	}
}
