package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/dshills/searchgraph-go/internal/logging"
	"github.com/dshills/searchgraph-go/search"
	"github.com/dshills/searchgraph-go/search/emit"
	"github.com/dshills/searchgraph-go/search/mcts"
)

var runFlags struct {
	config string
	RunConfig
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search a built-in problem and print its solutions",
	Long: "Problems: path (0..size), tree (binary tree of depth size), grid (maze),\n" +
		"queens (size queens).\n" +
		"Algorithms: best-first, astar, lds, rollout, mcts.",
	RunE: runRun,
}

func init() {
	d := DefaultRunConfig()
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "YAML run file; flags override its values")
	f.StringVar(&runFlags.Problem, "problem", d.Problem, "Problem: path, tree, grid, queens")
	f.IntVar(&runFlags.Size, "size", d.Size, "Problem size")
	f.StringVar(&runFlags.Algorithm, "algorithm", d.Algorithm, "Algorithm: best-first, astar, lds, rollout, mcts")
	f.StringVar(&runFlags.Discard, "discard", d.Discard, "Parent discarding: none, open, all")
	f.IntVar(&runFlags.Parallelism, "parallelism", d.Parallelism, "Concurrent child evaluations per expansion")
	f.DurationVar(&runFlags.EvalTimeout, "eval-timeout", 0, "Per-node evaluation timeout (0 = none)")
	f.DurationVar(&runFlags.Timeout, "timeout", 0, "Whole-search timeout (0 = none)")
	f.IntVar(&runFlags.MaxSolutions, "max-solutions", d.MaxSolutions, "Stop after this many solutions (0 = all)")
	f.IntVar(&runFlags.MaxExpansions, "max-expansions", 0, "Expansion limit (0 = none)")
	f.IntVar(&runFlags.MaxDiscrepancies, "max-discrepancies", d.MaxDiscrepancies, "LDS discrepancy limit (-1 = unlimited)")
	f.Uint64Var(&runFlags.Seed, "seed", 0, "Random seed for tree values, rollouts and MCTS")
	f.IntVar(&runFlags.Iterations, "iterations", d.Iterations, "MCTS iteration budget")
	f.StringVar(&runFlags.Events, "events", "", "Write the event history as JSON lines to this file")
	f.BoolVar(&runFlags.Metrics, "metrics", false, "Print Prometheus metrics after the run")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg := DefaultRunConfig()
	if runFlags.config != "" {
		var err error
		if cfg, err = LoadRunConfig(runFlags.config); err != nil {
			return err
		}
	}
	applyFlags(&cfg, cmd.Flags(), runFlags.RunConfig)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch cfg.Problem {
	case "path":
		return runProblem(ctx, out, cfg, pathProblem(cfg))
	case "tree":
		return runProblem(ctx, out, cfg, treeProblem(cfg))
	case "grid":
		p, err := gridProblem(cfg)
		if err != nil {
			return err
		}
		return runProblem(ctx, out, cfg, p)
	case "queens":
		return runProblem(ctx, out, cfg, queensProblem(cfg))
	}
	return fmt.Errorf("unknown problem %q", cfg.Problem)
}

// session is what runProblem needs from either engine.
type session[N comparable, A any] interface {
	search.Searcher[N, A]
	RegisterListener(emit.Emitter)
}

func runProblem[N comparable, A any](ctx context.Context, out io.Writer, cfg RunConfig, p problem[N, A]) error {
	log := logging.New("gsearch")
	registry := prometheus.NewRegistry()
	metrics := search.NewMetrics(registry)

	s, err := newSession(cfg, p, metrics)
	if err != nil {
		return err
	}

	var history *emit.LogEmitter
	if cfg.Events != "" {
		f, err := os.Create(cfg.Events)
		if err != nil {
			return fmt.Errorf("create events file: %w", err)
		}
		defer f.Close()
		history = emit.NewLogEmitter(f, true)
		s.RegisterListener(history)
	}

	log.Info("search started", "problem", cfg.Problem, "algorithm", cfg.Algorithm, "size", cfg.Size)
	start := time.Now()
	found := 0
	for sol, err := range s.Solutions(ctx) {
		if err != nil {
			return fmt.Errorf("search ended after %d solutions: %w", found, err)
		}
		found++
		if cost, ok := sol.Cost(); ok {
			fmt.Fprintf(out, "solution #%d cost=%g: %s\n", sol.Ordinal, cost, sol.Path)
		} else {
			fmt.Fprintf(out, "solution #%d score=%g: %s\n", sol.Ordinal, sol.Score, sol.Path)
		}
		if cfg.MaxSolutions > 0 && found >= cfg.MaxSolutions {
			s.Cancel()
			break
		}
	}
	fmt.Fprintf(out, "%d solution(s) in %v\n", found, time.Since(start).Round(time.Microsecond))

	if bf, ok := s.(*search.Search[N, A]); ok {
		st := bf.Stats()
		fmt.Fprintf(out, "expansions=%d generated=%d added=%d removed=%d dead_ends=%d eval_failures=%d eval_timeouts=%d parent_switches=%d\n",
			st.Expansions, st.Generated, st.Added, st.Removed, st.DeadEnds, st.EvaluationFailures, st.EvaluationTimeouts, st.ParentSwitches)
	}
	if m, ok := s.(*mcts.Search[N, A]); ok {
		fmt.Fprintf(out, "iterations=%d tree_size=%d\n", m.Iterations(), m.TreeSize())
	}

	if history != nil {
		if err := history.Err(); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
	}
	if cfg.Metrics {
		if err := printMetrics(out, registry); err != nil {
			return err
		}
	}
	return nil
}

func newSession[N comparable, A any](cfg RunConfig, p problem[N, A], metrics *search.Metrics) (session[N, A], error) {
	policy, err := search.ParseParentDiscarding(cfg.Discard)
	if err != nil {
		return nil, err
	}
	opts := []search.Option{
		search.WithParentDiscarding(policy),
		search.WithParallelism(max(cfg.Parallelism, 1)),
		search.WithEvaluationTimeout(cfg.EvalTimeout),
		search.WithTimeout(cfg.Timeout),
		search.WithMaxExpansions(cfg.MaxExpansions),
		search.WithLogger(logging.New("search")),
		search.WithMetrics(metrics),
	}

	switch cfg.Algorithm {
	case "best-first":
		return search.New(p.gen, p.eval, opts...)
	case "astar":
		return search.NewAStar(p.gen, search.UnitCost[N, A], p.heuristic, opts...)
	case "lds":
		return search.NewLimitedDiscrepancy(p.gen, p.eval, append(opts, search.WithMaxDiscrepancies(cfg.MaxDiscrepancies))...)
	case "rollout":
		rc := search.NewRandomCompletion(p.gen, search.Depth[N, A](), search.RolloutOptions{
			Samples: 3,
			Seed:    cfg.Seed,
			Timeout: cfg.EvalTimeout,
		})
		return search.New(p.gen, rc, opts...)
	case "mcts":
		return mcts.New(p.gen, search.Depth[N, A](),
			mcts.WithMaxIterations(max(cfg.Iterations, 1)),
			mcts.WithTimeout(cfg.Timeout),
			mcts.WithSeed(cfg.Seed),
			mcts.WithLogger(logging.New("mcts")),
			mcts.WithMetrics(metrics),
		)
	}
	return nil, fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
}

// printMetrics writes the registry in the Prometheus text exposition format.
func printMetrics(out io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}
