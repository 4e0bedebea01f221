package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/headweight/weights"
	"github.com/inference-sim/headweight/weights/artifact"
	"github.com/inference-sim/headweight/weights/history"
	"github.com/inference-sim/headweight/weights/profile"
)

// defaultsFilePath is where defaults.yaml is looked up unless --defaults is given.
const defaultsFilePath = "defaults.yaml"

// runSettings holds the flags shared by compute and watch.
type runSettings struct {
	ProfileDir      string // Directory searched for head_profile_*.json
	OutputDir       string // Directory receiving head_weights_*.json
	Policy          string // Named coefficient policy from defaults.yaml
	Coefficients    string // Inline override, e.g. accuracy:0.4,speed:0.3,confidence:0.3
	DegenerateScore string // Score assigned when a category has no spread
	DefaultsPath    string // Path to defaults.yaml
	MetricsTextfile string // Optional Prometheus textfile output
	HistoryDriver   string // Optional run ledger backend
	HistoryDSN      string // Ledger connection string
}

var computeFlags runSettings

// runPlan is a fully resolved run: defaults file, policy and flags merged.
type runPlan struct {
	Options         weights.Options
	PolicyName      string
	Method          string
	ProfileDir      string
	OutputDir       string
	MetricsTextfile string
	HistoryDriver   history.Driver
	HistoryDSN      string
}

// computeCmd weights the heads of one profiler report.
var computeCmd = &cobra.Command{
	Use:   "compute [profile-path]",
	Short: "Compute head weights from a profiler report",
	Long: `Compute head weights from a profiler report and write a new
head_weights_<timestamp>.json into the output directory. Without a
profile path, the most recent head_profile_*.json in --profile-dir is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := resolvePlan(computeFlags, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := executeRun(cmd.Context(), plan, path, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Weighting failed: %v", err)
		}
	},
}

func addRunFlags(c *cobra.Command, s *runSettings) {
	c.Flags().StringVar(&s.ProfileDir, "profile-dir", profile.DefaultDir, "Directory searched for head_profile_*.json when no path is given")
	c.Flags().StringVar(&s.OutputDir, "output-dir", ".", "Directory receiving head_weights_*.json")
	c.Flags().StringVar(&s.Policy, "policy", "", "Coefficient policy from the defaults file (default: its default_policy)")
	c.Flags().StringVar(&s.Coefficients, "coefficients", "", "Inline coefficients, e.g. accuracy:0.4,speed:0.3,confidence:0.3 (overrides --policy)")
	c.Flags().StringVar(&s.DegenerateScore, "degenerate-score", string(weights.DegenerateZero), "Score for a metric identical across heads (zero, one)")
	c.Flags().StringVar(&s.DefaultsPath, "defaults", defaultsFilePath, "Path to defaults.yaml")
	c.Flags().StringVar(&s.MetricsTextfile, "metrics-textfile", "", "Also write Prometheus gauges to this textfile")
	c.Flags().StringVar(&s.HistoryDriver, "history-driver", "", "Record runs in a ledger (sqlite, postgres); empty disables")
	c.Flags().StringVar(&s.HistoryDSN, "history-dsn", "", "Ledger DSN (sqlite default: headweight_history.db)")
}

// resolvePlan merges the defaults file with flags. Flag values win only when
// the user set them (changed reports that), so flag defaults never shadow
// values from the file.
func resolvePlan(s runSettings, changed func(name string) bool) (*runPlan, error) {
	cfg, err := resolveDefaultsConfig(s.DefaultsPath, changed("defaults"))
	if err != nil {
		return nil, err
	}
	name, policy, err := cfg.Policy(s.Policy)
	if err != nil {
		return nil, err
	}

	var coeffs weights.Coefficients
	if s.Coefficients != "" {
		coeffs, err = weights.ParseCoefficients(s.Coefficients)
	} else {
		coeffs, err = policy.Coefficients()
	}
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", name, err)
	}

	degenerate := s.DegenerateScore
	if !changed("degenerate-score") && cfg.DegenerateScore != "" {
		degenerate = cfg.DegenerateScore
	}
	if !weights.IsValidDegeneratePolicy(degenerate) {
		return nil, fmt.Errorf("unknown degenerate score %q; valid: %v", degenerate, weights.ValidDegeneratePolicies())
	}

	plan := &runPlan{
		Options:         weights.Options{Coefficients: coeffs, Degenerate: weights.DegeneratePolicy(degenerate)},
		PolicyName:      name,
		Method:          policy.Method,
		ProfileDir:      s.ProfileDir,
		OutputDir:       s.OutputDir,
		MetricsTextfile: s.MetricsTextfile,
		HistoryDriver:   history.Driver(s.HistoryDriver),
		HistoryDSN:      s.HistoryDSN,
	}
	if !changed("profile-dir") && cfg.ProfileDir != "" {
		plan.ProfileDir = cfg.ProfileDir
	}
	if !changed("output-dir") && cfg.OutputDir != "" {
		plan.OutputDir = cfg.OutputDir
	}
	logrus.Debugf("policy=%s method=%s coefficients=%+v degenerate=%s", name, plan.Method, coeffs, degenerate)
	return plan, nil
}

// executeRun performs one full weighting run and prints its report to out.
// Any error before the artifact is written leaves the output directory
// untouched. Textfile and ledger failures after that are logged only.
func executeRun(ctx context.Context, plan *runPlan, profilePath string, out io.Writer) (string, error) {
	if profilePath == "" {
		located, err := profile.Locate(plan.ProfileDir)
		if err != nil {
			return "", err
		}
		profilePath = located
	}
	logrus.Infof("loading profile %s", profilePath)

	report, err := profile.Load(profilePath)
	if err != nil {
		return "", err
	}
	res, err := weights.Compute(report.Profiles, plan.Options)
	if err != nil {
		return "", fmt.Errorf("%s: %w", profilePath, err)
	}

	artifactPath, doc, err := artifact.NewEmitter(plan.OutputDir).Emit(res, artifact.Metadata{
		Method: plan.Method,
		Source: profilePath,
	})
	if err != nil {
		return "", err
	}

	if plan.MetricsTextfile != "" {
		if err := artifact.WriteTextfile(plan.MetricsTextfile, res); err != nil {
			logrus.Errorf("%v", err)
		}
	}
	if plan.HistoryDriver != "" {
		recordRun(ctx, plan, doc, artifactPath)
	}

	printReport(out, res, doc, artifactPath)
	return artifactPath, nil
}

func recordRun(ctx context.Context, plan *runPlan, doc artifact.Document, artifactPath string) {
	store, err := history.Open(ctx, plan.HistoryDriver, plan.HistoryDSN)
	if err != nil {
		logrus.Errorf("history ledger unavailable; run %s not recorded: %v", doc.RunID, err)
		return
	}
	defer store.Close()

	created, err := time.Parse(time.RFC3339, doc.Timestamp)
	if err != nil {
		created = time.Now().UTC()
	}
	run := history.Run{
		ID:           doc.RunID,
		CreatedAt:    created,
		Method:       doc.CalculationMethod,
		Formula:      doc.WeightFormula,
		Outcome:      string(doc.Outcome),
		Source:       doc.SourceProfile,
		ArtifactPath: artifactPath,
		Weights:      doc.Heads,
	}
	if err := store.Record(ctx, run); err != nil {
		logrus.Errorf("history ledger: %v", err)
		return
	}
	logrus.Infof("run %s recorded in history ledger", doc.RunID)
}

func init() {
	addRunFlags(computeCmd, &computeFlags)
}
