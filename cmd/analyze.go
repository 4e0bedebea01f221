package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/headweight/weights/profile"
)

var analyzeProfileDir string // Directory searched when no path is given

// analyzeCmd prints spread statistics and tuning recommendations for a report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [profile-path]",
	Short: "Print variance analysis and recommendations for a profiler report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		if err := runAnalyze(path, analyzeProfileDir, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Analysis failed: %v", err)
		}
	},
}

func runAnalyze(path, dir string, out io.Writer) error {
	if path == "" {
		located, err := profile.Locate(dir)
		if err != nil {
			return err
		}
		path = located
	}
	report, err := profile.Load(path)
	if err != nil {
		return err
	}
	a, err := profile.Analyze(report.Profiles)
	if err != nil {
		return err
	}
	printAnalysis(out, path, a)
	return nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProfileDir, "profile-dir", profile.DefaultDir, "Directory searched for head_profile_*.json when no path is given")
}
