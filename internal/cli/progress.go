package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/internal/tui"
)

// retryReporter returns the plain-text callback used when no progress
// animation is drawn. Verbose mode already logs each retry from the executor.
func retryReporter(logger *logging.ConsoleLogger, maxAttempts int) func(int, error, time.Duration) {
	if logger.IsVerbose() {
		return nil
	}
	return func(attempt int, err error, delay time.Duration) {
		logger.Info("attempt %d/%d failed: %v (retrying in %s)", attempt+1, maxAttempts, err, delay.Round(time.Millisecond))
	}
}

// runWithProgress shows the animated display unless --no-progress or
// --verbose is set, or the terminal is not interactive.
func runWithProgress(cmd *cobra.Command, logger *logging.ConsoleLogger, title string, maxAttempts int, fn tui.RetryFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fallback := retryReporter(logger, maxAttempts)
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if noProgress || logger.IsVerbose() {
		return fn(ctx, fallback)
	}
	return tui.RunWithProgress(ctx, title, maxAttempts, fallback, fn)
}
