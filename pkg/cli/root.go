// Package cli implements the rsbench command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code. Configuration and
// test-file errors exit non-zero; a completed run exits zero even when it
// contains failed or incomplete attempts.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	configPath string
	testsDir   string
	outputDir  string
	historyDB  string
	schedule   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "rsbench <target> <test-file>",
		Short: "Benchmark SQL statements through the Redshift Data API",
		Long: "rsbench repeatedly executes the SQL tests in <test-file> against the\n" +
			"Redshift cluster or workgroup named by <target> in the configuration\n" +
			"file, and reports min/max/avg duration statistics per test.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), opts, args[0], args[1])
		},
	}

	rootCmd.Flags().StringVar(&opts.configPath, "config", "config.yaml", "Path to the run configuration file")
	rootCmd.Flags().StringVar(&opts.testsDir, "tests-dir", "test_queries", "Directory containing test files")
	rootCmd.Flags().StringVar(&opts.outputDir, "output-dir", "run_details", "Directory for per-run CSV records")
	rootCmd.Flags().StringVar(&opts.historyDB, "history-db", "", "Optional SQLite file collecting records across runs")
	rootCmd.Flags().StringVar(&opts.schedule, "schedule", "", "Optional cron expression to re-run until interrupted")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log raw poll responses")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
