package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/searchgraph-go/search/emit"
)

var replayCmd = &cobra.Command{
	Use:   "replay <events.jsonl>",
	Short: "Rebuild the search graph from a recorded event history",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	events, err := emit.ReadHistory(f)
	if err != nil {
		return err
	}
	rec := emit.NewGraphRecorder()
	emit.Replay(events, rec)
	snap := rec.Snapshot()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d events, %d roots, %d nodes\n", len(events), len(snap.Roots), len(snap.Nodes))

	types := map[string]int{}
	reasons := map[string]int{}
	for _, n := range snap.Nodes {
		if n.Removed {
			reasons[n.Reason]++
			continue
		}
		types[n.Type]++
	}
	fmt.Fprintf(out, "node types: %s\n", formatCounts(types))
	if len(reasons) > 0 {
		fmt.Fprintf(out, "removed: %s\n", formatCounts(reasons))
	}
	for i, id := range snap.Solutions {
		fmt.Fprintf(out, "solution #%d (node %d): %s\n", i+1, id, strings.Join(rec.PathTo(id), " -> "))
	}
	for _, err := range rec.Errs() {
		fmt.Fprintf(cmd.ErrOrStderr(), "inconsistent history: %v\n", err)
	}
	if n := len(rec.Errs()); n > 0 {
		return fmt.Errorf("%d inconsistencies in history", n)
	}
	return nil
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}
