package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/headweight/weights/profile"
)

var (
	watchFlags     runSettings
	watchSettle    time.Duration // Quiet period before a new report is read
	watchRunLatest bool          // Weight the newest existing report before waiting
)

// watchCmd recomputes weights every time the profiler drops a new report.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute head weights whenever a new profiler report appears",
	Long: `Watch --profile-dir and run compute on every new head_profile_*.json.
Runs are sequential. A failed run is logged and the watch continues.
SIGINT or SIGTERM stops the watch between runs.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := resolvePlan(watchFlags, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		run := func(path string) {
			if _, err := executeRun(ctx, plan, path, out); err != nil {
				logrus.Errorf("Weighting %s failed: %v", path, err)
			}
		}

		if watchRunLatest {
			if latest, err := profile.Locate(plan.ProfileDir); err != nil {
				logrus.Warnf("no existing profile to weight: %v", err)
			} else {
				run(latest)
			}
		}
		if err := profile.Watch(ctx, plan.ProfileDir, watchSettle, run); err != nil {
			logrus.Fatalf("Watch failed: %v", err)
		}
		logrus.Info("watch stopped")
	},
}

func init() {
	addRunFlags(watchCmd, &watchFlags)
	watchCmd.Flags().DurationVar(&watchSettle, "settle", profile.DefaultSettle, "Quiet period after the last write before a report is read")
	watchCmd.Flags().BoolVar(&watchRunLatest, "run-latest", false, "Weight the newest existing report before waiting for new ones")
}
