package mcts

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/searchgraph-go/search"
	"github.com/dshills/searchgraph-go/search/emit"
)

// Option configures a Search.
type Option func(*config) error

type config struct {
	maxIterations int
	timeout       time.Duration
	evalTimeout   time.Duration
	horizon       int
	failureCost   float64
	seed          uint64
	treePolicy    TreePolicy
	defaultPolicy DefaultPolicy
	backup        Backup
	runID         string
	logger        *slog.Logger
	metrics       *search.Metrics
	listeners     []emit.Emitter
}

func buildConfig(opts []Option) (config, error) {
	cfg := config{
		maxIterations: 1000,
		horizon:       100,
		failureCost:   1,
		treePolicy:    UCB1{C: math.Sqrt2},
		defaultPolicy: UniformRandom{},
		backup:        MonteCarloBackup{},
	}
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

func invalid(format string, args ...any) error {
	return &search.SearchError{
		Message: fmt.Sprintf(format, args...),
		Code:    search.CodeInvalidOption,
		NodeID:  search.NoNode,
	}
}

// WithMaxIterations bounds the number of selection/rollout/backup cycles.
// Once spent, Next returns search.ErrExhausted.
//
// Default: 1000.
func WithMaxIterations(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return invalid("max iterations must be >= 1, got %d", n)
		}
		cfg.maxIterations = n
		return nil
	}
}

// WithTimeout sets a wall-clock budget measured from activation. Once spent,
// Next returns search.ErrExhausted: MCTS is an anytime algorithm and running
// out of time is its normal end.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return invalid("timeout must be >= 0, got %v", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithEvaluationTimeout bounds every evaluation of a completed rollout path.
// A timed-out evaluation counts as a failed rollout.
func WithEvaluationTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return invalid("evaluation timeout must be >= 0, got %v", d)
		}
		cfg.evalTimeout = d
		return nil
	}
}

// WithHorizon bounds the depth of rollouts. A rollout that reaches the
// horizon without a goal fails.
//
// Default: 100.
func WithHorizon(depth int) Option {
	return func(cfg *config) error {
		if depth < 1 {
			return invalid("horizon must be >= 1, got %d", depth)
		}
		cfg.horizon = depth
		return nil
	}
}

// WithFailureCost sets the penalty for rollouts that end in a dead end, at
// the horizon or with a failed evaluation. Such a rollout is backed up as if
// it had reached a goal costing the worst goal cost seen so far (at least 0)
// plus c.
//
// Default: 1.
func WithFailureCost(c float64) Option {
	return func(cfg *config) error {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return invalid("failure cost must be finite and > 0, got %v", c)
		}
		cfg.failureCost = c
		return nil
	}
}

// WithSeed seeds the random source used by expansion and rollouts.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithTreePolicy sets the selection policy.
//
// Default: UCB1 with C = sqrt(2).
func WithTreePolicy(p TreePolicy) Option {
	return func(cfg *config) error {
		if p == nil {
			return invalid("tree policy must not be nil")
		}
		cfg.treePolicy = p
		return nil
	}
}

// WithDefaultPolicy sets the rollout policy.
//
// Default: UniformRandom.
func WithDefaultPolicy(p DefaultPolicy) Option {
	return func(cfg *config) error {
		if p == nil {
			return invalid("default policy must not be nil")
		}
		cfg.defaultPolicy = p
		return nil
	}
}

// WithBackup sets the backup step.
//
// Default: MonteCarloBackup.
func WithBackup(b Backup) Option {
	return func(cfg *config) error {
		if b == nil {
			return invalid("backup must not be nil")
		}
		cfg.backup = b
		return nil
	}
}

// WithRunID sets the identifier attached to emitted events.
func WithRunID(id string) Option {
	return func(cfg *config) error {
		cfg.runID = id
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l
		return nil
	}
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(m *search.Metrics) Option {
	return func(cfg *config) error {
		cfg.metrics = m
		return nil
	}
}

// WithListener registers an event listener.
func WithListener(l emit.Emitter) Option {
	return func(cfg *config) error {
		if l == nil {
			return invalid("listener must not be nil")
		}
		cfg.listeners = append(cfg.listeners, l)
		return nil
	}
}
