package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retrier",
	Short: "Retry commands and wait for dependencies with exponential backoff",
	Long: `retrier runs an operation until it succeeds or its attempt budget is spent,
sleeping between attempts with capped exponential backoff and full jitter.

The first wait is exactly --min-timeout. Each later wait is drawn uniformly
from [0, min(--max-timeout, --min-timeout * --multiplier^n)).

Settings are resolved as: flags > RETRIER_* environment > retrier.yaml > defaults.
A .env file in the working directory is loaded first.

Exit Codes:
  0  - Success
  1  - General error (non-retryable failure)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Connection failed (non-retryable)
  15 - Every attempt failed
  16 - Aborted (interrupted or cancelled)`,
	SilenceUsage: true,
}

// Execute runs the root command. Cancelling ctx aborts the running command.
func Execute(ctx context.Context) error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every failed attempt and wait")
	rootCmd.PersistentFlags().Bool("no-progress", false, "Disable the animated progress display")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./retrier.yaml if present)")
	addRetryFlags(rootCmd)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
