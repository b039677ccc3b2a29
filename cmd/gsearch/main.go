// gsearch runs the search engine on built-in problems, checks problem
// definitions for dead ends and cycles, and replays recorded event histories.
//
// Usage:
//
//	gsearch run --problem=grid --algorithm=astar --discard=all --events=events.jsonl
//	gsearch run --config=run.yaml
//	gsearch check --problem=queens --size=6
//	gsearch replay events.jsonl
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
