package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/internal/tui"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the retry schedule for the resolved settings",
	Long: `Print the waits between attempts for the resolved settings.

"wait up to" is the bound of each wait; "sample" is one random draw.
Nothing is executed.`,
	Example: `  retrier schedule --max-attempts 8 --min-timeout 250ms --max-timeout 10s`,
	Args:    cobra.NoArgs,
	RunE:    runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	steps := retry.Schedule(retry.NewFullJitterBackoff(cfg))
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSchedule(cfg, steps))
	return nil
}
