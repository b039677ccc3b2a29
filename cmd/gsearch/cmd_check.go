package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/searchgraph-go/search"
)

var checkFlags struct {
	problem  string
	size     int
	maxNodes int
	maze     []string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan a problem for dead ends and cycles before searching it",
	RunE:  runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkFlags.problem, "problem", "path", "Problem: path, tree, grid, queens")
	f.IntVar(&checkFlags.size, "size", 8, "Problem size")
	f.IntVar(&checkFlags.maxNodes, "max-nodes", 10000, "Stop after visiting this many labels")
	f.StringSliceVar(&checkFlags.maze, "maze", nil, "Maze rows for the grid problem")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg := DefaultRunConfig()
	cfg.Problem = checkFlags.problem
	cfg.Size = checkFlags.size
	cfg.Maze = checkFlags.maze

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch cfg.Problem {
	case "path":
		return check(ctx, out, pathProblem(cfg).gen, checkFlags.maxNodes)
	case "tree":
		return check(ctx, out, treeProblem(cfg).gen, checkFlags.maxNodes)
	case "grid":
		p, err := gridProblem(cfg)
		if err != nil {
			return err
		}
		return check(ctx, out, p.gen, checkFlags.maxNodes)
	case "queens":
		return check(ctx, out, queensProblem(cfg).gen, checkFlags.maxNodes)
	}
	return fmt.Errorf("unknown problem %q", cfg.Problem)
}

func check[N comparable, A any](ctx context.Context, out io.Writer, gen search.Generator[N, A], maxNodes int) error {
	report, err := search.CheckGraph[N, A](ctx, gen, nil, maxNodes)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "visited %d labels\n", report.Visited)
	if report.Truncated {
		fmt.Fprintf(out, "scan truncated at %d labels\n", maxNodes)
	}
	for _, f := range report.Findings {
		fmt.Fprintln(out, f)
	}
	fmt.Fprintf(out, "%d dead end(s), %d cycle(s)\n", len(report.DeadEnds()), len(report.Cycles()))
	return nil
}
