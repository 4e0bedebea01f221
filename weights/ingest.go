package weights

import (
	"fmt"
	"math"
	"sort"
)

// RawMetrics holds the unnormalized per-category values extracted from a
// profile set, one entry per head in each map.
type RawMetrics struct {
	Accuracy   ScoreSet // max(0, 1 - error_rate); higher is better
	Latency    ScoreSet // mean latency in ms; lower is better
	Confidence ScoreSet // mean confidence in [0,1]; higher is better
}

// statField names a statistic as it appears in the profile document.
type statField struct {
	name  string
	value func(SampleStats) *float64
}

var latencyFields = []statField{
	{"latency.min_ms", func(s SampleStats) *float64 { return s.Min }},
	{"latency.max_ms", func(s SampleStats) *float64 { return s.Max }},
	{"latency.mean_ms", func(s SampleStats) *float64 { return s.Mean }},
	{"latency.median_ms", func(s SampleStats) *float64 { return s.Median }},
	{"latency.stdev_ms", func(s SampleStats) *float64 { return s.StdDev }},
}

var confidenceFields = []statField{
	{"confidence.min", func(s SampleStats) *float64 { return s.Min }},
	{"confidence.max", func(s SampleStats) *float64 { return s.Max }},
	{"confidence.mean", func(s SampleStats) *float64 { return s.Mean }},
	{"confidence.median", func(s SampleStats) *float64 { return s.Median }},
	{"confidence.stdev", func(s SampleStats) *float64 { return s.StdDev }},
}

// sortedProfiles returns a copy of profiles ordered by head name.
func sortedProfiles(profiles []HeadProfile) []HeadProfile {
	out := make([]HeadProfile, len(profiles))
	copy(out, profiles)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateProfiles checks a complete profile set before any computation.
// Heads are checked in name order so the first reported problem is stable.
func ValidateProfiles(profiles []HeadProfile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("%w: a distribution over zero heads is undefined", ErrEmptyProfileSet)
	}
	sorted := sortedProfiles(profiles)
	for i, p := range sorted {
		if p.Name == "" {
			return &ProfileError{Head: p.Name, Reason: "head name is empty"}
		}
		if i > 0 && sorted[i-1].Name == p.Name {
			return &ProfileError{Head: p.Name, Reason: "duplicate head name"}
		}
		if err := validateHead(p); err != nil {
			return err
		}
	}
	// Every head in a run must carry the same statistic fields.
	ref := sorted[0]
	for _, p := range sorted[1:] {
		if p.Latency.populated() != ref.Latency.populated() {
			return &ProfileError{Head: p.Name, Field: "latency",
				Reason: fmt.Sprintf("populated statistics differ from head %q", ref.Name)}
		}
		if p.Confidence.populated() != ref.Confidence.populated() {
			return &ProfileError{Head: p.Name, Field: "confidence",
				Reason: fmt.Sprintf("populated statistics differ from head %q", ref.Name)}
		}
	}
	return nil
}

func validateHead(p HeadProfile) error {
	if !isFinite(p.ErrorRate) || p.ErrorRate < 0 || p.ErrorRate > 1 {
		return &ProfileError{Head: p.Name, Field: "error_rate",
			Reason: fmt.Sprintf("must be a finite number in [0,1], got %v", p.ErrorRate)}
	}
	if p.Latency.Mean == nil {
		return &ProfileError{Head: p.Name, Field: "latency.mean_ms", Reason: "required field missing"}
	}
	if p.Confidence.Mean == nil {
		return &ProfileError{Head: p.Name, Field: "confidence.mean", Reason: "required field missing"}
	}
	for _, f := range latencyFields {
		v := f.value(p.Latency)
		if v != nil && (!isFinite(*v) || *v < 0) {
			return &ProfileError{Head: p.Name, Field: f.name,
				Reason: fmt.Sprintf("must be a finite non-negative number, got %v", *v)}
		}
	}
	for _, f := range confidenceFields {
		v := f.value(p.Confidence)
		if v != nil && (!isFinite(*v) || *v < 0 || *v > 1) {
			return &ProfileError{Head: p.Name, Field: f.name,
				Reason: fmt.Sprintf("must be a finite number in [0,1], got %v", *v)}
		}
	}
	return nil
}

// Extract validates profiles and returns the raw per-category metrics.
func Extract(profiles []HeadProfile) (RawMetrics, error) {
	if err := ValidateProfiles(profiles); err != nil {
		return RawMetrics{}, err
	}
	raw := RawMetrics{
		Accuracy:   make(ScoreSet, len(profiles)),
		Latency:    make(ScoreSet, len(profiles)),
		Confidence: make(ScoreSet, len(profiles)),
	}
	for _, p := range profiles {
		raw.Accuracy[p.Name] = math.Max(0, 1.0-p.ErrorRate)
		raw.Latency[p.Name] = *p.Latency.Mean
		raw.Confidence[p.Name] = *p.Confidence.Mean
	}
	return raw, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
