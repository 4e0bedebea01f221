package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/inference-sim/headweight/weights"
	"github.com/inference-sim/headweight/weights/artifact"
	"github.com/inference-sim/headweight/weights/history"
	"github.com/inference-sim/headweight/weights/profile"
)

const (
	ruleWidth   = 70
	barWidth    = 50
	minNameCol  = 20
	namePadding = 2
)

// nameColumn returns the display width of the head-name column for names.
func nameColumn(names []string) int {
	w := minNameCol
	for _, n := range names {
		if sw := runewidth.StringWidth(n) + namePadding; sw > w {
			w = sw
		}
	}
	return w
}

func pct(v float64) string {
	return fmt.Sprintf("%7.2f%%", v*100)
}

// printReport writes the per-category score table, the ranked weight
// summary and the artifact location.
func printReport(w io.Writer, res *weights.Result, doc artifact.Document, path string) {
	col := nameColumn(res.Heads)

	fmt.Fprintf(w, "\n%s%10s%10s%12s%10s\n", runewidth.FillRight("Head", col), "Accuracy", "Speed", "Confidence", "Weighted")
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	for _, name := range res.Heads {
		fmt.Fprintf(w, "%s%10s%10s%12s%10s\n", runewidth.FillRight(name, col),
			pct(res.Normalized.Accuracy[name]), pct(res.Normalized.Speed[name]),
			pct(res.Normalized.Confidence[name]), pct(res.Weighted[name]))
	}
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))

	s := weights.Summarize(res.Distribution)
	fmt.Fprintln(w, "\n[SUMMARY] Final Head Weights (Probability Distribution)")
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	for _, e := range s.Ranked {
		fmt.Fprintf(w, "%s%s  %s\n", runewidth.FillRight(e.Head, col), pct(e.Weight), strings.Repeat("█", int(e.Weight*barWidth)))
	}
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	fmt.Fprintf(w, "%s%s\n", runewidth.FillRight("Mean weight:", col), pct(s.Mean))
	fmt.Fprintf(w, "%s%s\n", runewidth.FillRight("Std deviation:", col), pct(s.StdDev))
	fmt.Fprintf(w, "%s%s - %s\n", runewidth.FillRight("Weight range:", col), pct(s.Min), strings.TrimSpace(pct(s.Max)))

	fmt.Fprintf(w, "\nOutcome: %s\n", res.Outcome)
	if len(res.DegenerateMetrics) > 0 {
		names := make([]string, len(res.DegenerateMetrics))
		for i, m := range res.DegenerateMetrics {
			names[i] = string(m)
		}
		fmt.Fprintf(w, "Degenerate metrics: %s (scored %s)\n", strings.Join(names, ", "), res.Degenerate)
	}
	if len(res.Clamped) > 0 {
		fmt.Fprintf(w, "Clamped scores: %s\n", strings.Join(doc.ClampedScores, ", "))
	}
	fmt.Fprintf(w, "Formula: %s\n", doc.WeightFormula)
	fmt.Fprintf(w, "Run ID: %s\n", doc.RunID)
	fmt.Fprintf(w, "Configuration saved to: %s\n", path)
}

// printAnalysis writes variance analysis and recommendations.
func printAnalysis(w io.Writer, source string, a *profile.Analysis) {
	fmt.Fprintf(w, "\n[ANALYSIS] %s (%d heads)\n", source, a.Heads)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, "Confidence  mean %.3f  variance %.4f  stdev %.4f  range %.3f - %.3f\n",
		a.ConfidenceMean, a.ConfidenceVariance, a.ConfidenceStdDev, a.ConfidenceRange[0], a.ConfidenceRange[1])
	fmt.Fprintf(w, "Latency     mean %.1fms  variance %.1f  stdev %.1fms  range %.1f - %.1fms\n",
		a.LatencyMeanMs, a.LatencyVariance, a.LatencyStdDev, a.LatencyRangeMs[0], a.LatencyRangeMs[1])

	if len(a.Recommendations) == 0 {
		fmt.Fprintln(w, "\nNo recommendations.")
		return
	}
	fmt.Fprintln(w, "\n[RECOMMENDATIONS]")
	col := minNameCol
	for _, r := range a.Recommendations {
		if sw := runewidth.StringWidth(r.Head) + namePadding; sw > col {
			col = sw
		}
	}
	for _, r := range a.Recommendations {
		fmt.Fprintf(w, "%s%s  current %.3f  target %.3f  %s\n", runewidth.FillRight(r.Head, col), r.Issue, r.Current, r.Target, r.Action)
	}
}

// printRuns writes a ledger listing, newest first.
func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return
	}
	const idCol = 38
	fmt.Fprintf(w, "%s%-22s%-20s%s\n", runewidth.FillRight("RUN ID", idCol), "CREATED", "OUTCOME", "ARTIFACT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s%-22s%-20s%s\n", runewidth.FillRight(r.ID, idCol),
			r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Outcome, r.ArtifactPath)
	}
}

// printRun writes one ledger entry with its weights ranked.
func printRun(w io.Writer, r *history.Run) {
	fmt.Fprintf(w, "Run ID:   %s\n", r.ID)
	fmt.Fprintf(w, "Created:  %s\n", r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Method:   %s\n", r.Method)
	fmt.Fprintf(w, "Formula:  %s\n", r.Formula)
	fmt.Fprintf(w, "Outcome:  %s\n", r.Outcome)
	fmt.Fprintf(w, "Source:   %s\n", r.Source)
	fmt.Fprintf(w, "Artifact: %s\n", r.ArtifactPath)

	ranked := weights.Summarize(weights.DistributionOf(r.Weights)).Ranked
	names := make([]string, len(ranked))
	for i, e := range ranked {
		names[i] = e.Head
	}
	col := nameColumn(names)
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	for _, e := range ranked {
		fmt.Fprintf(w, "%s%s\n", runewidth.FillRight(e.Head, col), pct(e.Weight))
	}
}
