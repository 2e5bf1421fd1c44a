package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/runner"
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- COMMAND [ARGS...]",
	Short: "Run a command until it exits 0",
	Long: `Run a command until it exits 0 or the attempt budget is spent.

Each attempt inherits the environment plus:
  RETRIER_RUN_ID   UUID shared by every attempt of this run
  RETRIER_ATTEMPT  1-based attempt number

Use --lock to serialize concurrent runs that share a lock file.`,
	Example: `  retrier exec --max-attempts 10 curl -fsS http://localhost:8080/health
  retrier exec --lock /tmp/migrate.lock --attempt-timeout 2m -- ./migrate up`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

type execFlagValues struct {
	lockFile       string
	attemptTimeout time.Duration
}

var execFlags execFlagValues

func init() {
	rootCmd.AddCommand(execCmd)

	// Everything after COMMAND belongs to the child, with or without "--".
	execCmd.Flags().SetInterspersed(false)

	execCmd.Flags().StringVar(&execFlags.lockFile, "lock", "", "Hold an exclusive lock on this file for the whole run")
	execCmd.Flags().DurationVar(&execFlags.attemptTimeout, "attempt-timeout", 0, "Kill an attempt that runs longer than this (0 = no limit)")
}

func resetExecFlags() {
	execFlags = execFlagValues{}
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	logVerboseConfig(logger, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := runner.New(cfg, logger)
	if report := retryReporter(logger, cfg.MaxAttempts()); report != nil {
		r = r.WithOnRetry(report)
	}

	result, err := r.Run(ctx, runner.Command{
		Name:           args[0],
		Args:           args[1:],
		Stdout:         cmd.OutOrStdout(),
		Stderr:         cmd.ErrOrStderr(),
		AttemptTimeout: execFlags.attemptTimeout,
		LockFile:       execFlags.lockFile,
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", result.RunID, err)
	}
	return nil
}
