package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vvka-141/retrier/internal/tui"
)

// resetCommandFlags restores every flag in the tree to its default so that
// one test's flags do not leak into the next Execute.
func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	t.Setenv(tui.EnvNonInteractive, "1")
	resetCommandFlags(rootCmd)
	resetExecFlags()
	resetWaitFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// clearRetryEnv isolates a test from RETRIER_* variables and config files.
func clearRetryEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RETRIER_MAX_ATTEMPTS", "RETRIER_MULTIPLIER", "RETRIER_MIN_TIMEOUT", "RETRIER_MAX_TIMEOUT",
		EnvConnectionString, "DATABASE_URL", "PGHOST",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}
