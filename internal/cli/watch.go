package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/pricewatch/internal/scheduler"
	"github.com/law-makers/pricewatch/internal/ui"
)

const defaultSchedule = "@every 30m"

var schedule string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run a search on a schedule until interrupted",
	Long: `Runs the search immediately and then on every tick of --schedule, printing
each run. Schedules are five-field cron expressions or descriptors such as
"@hourly" and "@every 15m". A run still in progress when the next tick fires
makes that tick a no-op.

With -o the file is overwritten after every run.`,
	Example: `  # Check prices every 30 minutes
  pricewatch watch --category laptop --brand Acme

  # Weekdays at 09:00, keeping an HTML report up to date
  pricewatch watch -c laptop -b Acme --schedule "0 9 * * 1-5" -o report.html`,
	// Args is validated before the browser starts
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.NoArgs(cmd, args); err != nil {
			return err
		}
		_, err := scheduler.Parse(schedule)
		return err
	},
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addQueryFlags(watchCmd)
	watchCmd.Flags().StringVar(&schedule, "schedule", defaultSchedule, "Cron expression or descriptor for re-runs")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	w := cmd.OutOrStdout()
	return scheduler.Run(contextOf(cmd), schedule, func(ctx context.Context, run int) error {
		if !a.Config.JSONLog {
			fmt.Fprintf(w, "\n%s %s\n", ui.Bold(fmt.Sprintf("Run #%d", run)), ui.Dim(time.Now().Format(time.DateTime)))
		}

		resp, err := query(cmd, a, true)
		if err != nil {
			return err
		}
		return report(cmd, a, resp)
	})
}
