package weights

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Outcome tags how a distribution was reached, so a consumer can tell a
// meaningful weighting from a fallback.
type Outcome string

const (
	// OutcomeNormal: every category had spread and the total weight was positive.
	OutcomeNormal Outcome = "normal"
	// OutcomeDegenerateMetric: at least one category had zero spread across heads.
	OutcomeDegenerateMetric Outcome = "degenerate-metric"
	// OutcomeUniformFallback: the aggregated total was zero and every head got 1/N.
	// Takes precedence over OutcomeDegenerateMetric.
	OutcomeUniformFallback Outcome = "uniform-fallback"
)

// Options configures one weighting run.
type Options struct {
	Coefficients Coefficients
	Degenerate   DegeneratePolicy
}

// DefaultOptions returns the adaptive_weighting_v1 coefficients with the
// historical degenerate policy (zero).
func DefaultOptions() Options {
	return Options{Coefficients: DefaultCoefficients(), Degenerate: DegenerateZero}
}

// Result is the complete, immutable outcome of one run. Intermediate score
// sets are kept for reporting; Distribution is the consumer-facing output.
type Result struct {
	Heads        []string // sorted head names
	Raw          RawMetrics
	SpeedRaw     ScoreSet // 1 - latency/max_latency, before normalization
	Normalized   NormalizedScores
	Weighted     ScoreSet
	Distribution Distribution

	Outcome           Outcome
	DegenerateMetrics []Metric // in canonical metric order
	UniformFallback   bool
	Clamped           []Clamp

	Coefficients Coefficients
	Degenerate   DegeneratePolicy
}

// Compute runs the full weighting pipeline over a complete profile set:
// extract raw metrics, invert latency into speed, normalize each category,
// aggregate with the configured coefficients, and distribute.
//
// Compute is a pure function. It returns ErrEmptyProfileSet,
// ErrMalformedProfile (possibly as *ProfileError), or ErrInvalidCoefficients
// wrapped with context; on error no partial Result is returned.
func Compute(profiles []HeadProfile, opts Options) (*Result, error) {
	if err := opts.Coefficients.Validate(); err != nil {
		return nil, err
	}
	if !IsValidDegeneratePolicy(string(opts.Degenerate)) {
		return nil, fmt.Errorf("unknown degenerate policy %q; valid: %v", opts.Degenerate, ValidDegeneratePolicies())
	}
	if opts.Degenerate == "" {
		opts.Degenerate = DegenerateZero
	}

	raw, err := Extract(profiles)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Raw:          raw,
		SpeedRaw:     InvertLatency(raw.Latency),
		Coefficients: opts.Coefficients,
		Degenerate:   opts.Degenerate,
	}
	res.Heads = raw.Accuracy.Names()

	category := map[Metric]ScoreSet{
		MetricAccuracy:   raw.Accuracy,
		MetricSpeed:      res.SpeedRaw,
		MetricConfidence: raw.Confidence,
	}
	normalized := make(map[Metric]ScoreSet, len(category))
	for _, m := range Metrics() {
		scores, degenerate := Normalize(category[m], opts.Degenerate)
		if degenerate {
			logrus.Warnf("%s metric is identical across all %d heads; normalized to %v (policy %q)",
				m, len(scores), opts.Degenerate.score(), opts.Degenerate)
			res.DegenerateMetrics = append(res.DegenerateMetrics, m)
		}
		normalized[m] = scores
	}
	res.Normalized = NormalizedScores{
		Accuracy:   normalized[MetricAccuracy],
		Speed:      normalized[MetricSpeed],
		Confidence: normalized[MetricConfidence],
	}

	res.Weighted, res.Clamped = Aggregate(res.Normalized, opts.Coefficients)
	res.Distribution, res.UniformFallback = Distribute(res.Weighted)
	if res.UniformFallback {
		logrus.Warnf("aggregated weight is zero for all %d heads; falling back to uniform distribution", len(res.Heads))
	}

	switch {
	case res.UniformFallback:
		res.Outcome = OutcomeUniformFallback
	case len(res.DegenerateMetrics) > 0:
		res.Outcome = OutcomeDegenerateMetric
	default:
		res.Outcome = OutcomeNormal
	}
	logrus.Debugf("computed weights for %d heads (outcome=%s)", len(res.Heads), res.Outcome)
	return res, nil
}
