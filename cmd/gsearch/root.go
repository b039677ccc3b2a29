package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/searchgraph-go/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "gsearch",
	Short: "Best-first, A*, LDS and Monte-Carlo tree search over implicit graphs",
	Long: "gsearch runs the searchgraph engine on built-in problems (path graph, binary tree,\n" +
		"grid maze, n-queens), records replayable event histories and checks problems\n" +
		"for dead ends and cycles.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.Version = version
}
