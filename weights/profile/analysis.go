package profile

import (
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/headweight/weights"
)

// lowConfidenceMargin is how far below the fleet mean a head's mean
// confidence may fall before it is flagged.
const lowConfidenceMargin = 0.05

// IssueLowConfidence flags a head whose mean confidence trails the fleet.
const IssueLowConfidence = "LOW_CONFIDENCE"

// Recommendation is one suggested rebalancing action.
type Recommendation struct {
	Head    string
	Issue   string
	Current float64
	Target  float64
	Action  string
}

// Analysis describes the spread of a profile set across heads.
// Variances are sample variances; they are 0 for a single head.
type Analysis struct {
	Heads              int
	ConfidenceMean     float64
	ConfidenceVariance float64
	ConfidenceStdDev   float64
	ConfidenceRange    [2]float64
	LatencyMeanMs      float64
	LatencyVariance    float64
	LatencyStdDev      float64
	LatencyRangeMs     [2]float64
	Recommendations    []Recommendation // in head name order
}

// Analyze computes cross-head spread statistics and low-confidence
// recommendations for a validated profile set.
func Analyze(profiles []weights.HeadProfile) (*Analysis, error) {
	raw, err := weights.Extract(profiles)
	if err != nil {
		return nil, err
	}
	names := raw.Confidence.Names()
	conf := make([]float64, len(names))
	lat := make([]float64, len(names))
	for i, name := range names {
		conf[i] = raw.Confidence[name]
		lat[i] = raw.Latency[name]
	}

	a := &Analysis{
		Heads:           len(names),
		ConfidenceMean:  stat.Mean(conf, nil),
		LatencyMeanMs:   stat.Mean(lat, nil),
		ConfidenceRange: minMax(conf),
		LatencyRangeMs:  minMax(lat),
	}
	if len(names) > 1 {
		a.ConfidenceVariance = stat.Variance(conf, nil)
		a.ConfidenceStdDev = stat.StdDev(conf, nil)
		a.LatencyVariance = stat.Variance(lat, nil)
		a.LatencyStdDev = stat.StdDev(lat, nil)
	}

	for i, name := range names {
		if conf[i] < a.ConfidenceMean-lowConfidenceMargin {
			a.Recommendations = append(a.Recommendations, Recommendation{
				Head:    name,
				Issue:   IssueLowConfidence,
				Current: conf[i],
				Target:  a.ConfidenceMean + lowConfidenceMargin,
				Action:  "Increase weight",
			})
		}
	}
	return a, nil
}

func minMax(values []float64) [2]float64 {
	r := [2]float64{values[0], values[0]}
	for _, v := range values[1:] {
		if v < r[0] {
			r[0] = v
		}
		if v > r[1] {
			r[1] = v
		}
	}
	return r
}
