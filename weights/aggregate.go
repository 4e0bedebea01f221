package weights

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// NormalizedScores holds one normalized ScoreSet per category.
// All three sets must cover the same heads.
type NormalizedScores struct {
	Accuracy   ScoreSet
	Speed      ScoreSet
	Confidence ScoreSet
}

// For returns the ScoreSet of one category.
func (n NormalizedScores) For(m Metric) ScoreSet {
	switch m {
	case MetricAccuracy:
		return n.Accuracy
	case MetricSpeed:
		return n.Speed
	case MetricConfidence:
		return n.Confidence
	default:
		panic(fmt.Sprintf("unknown metric %q", m))
	}
}

// Clamp records a normalized input that fell outside [0,1] and was clamped
// before aggregation.
type Clamp struct {
	Head   string  `json:"head"`
	Metric Metric  `json:"metric"`
	Value  float64 `json:"value"`
}

// Aggregate combines normalized scores into one scalar per head:
//
//	weighted = accuracy*c.Accuracy + speed*c.Speed + confidence*c.Confidence
//
// Inputs are expected in [0,1]. Any value outside that range (or NaN) is
// clamped, logged, and returned in the clamp list so that bad upstream
// normalization never propagates silently.
func Aggregate(scores NormalizedScores, c Coefficients) (ScoreSet, []Clamp) {
	weighted := make(ScoreSet, len(scores.Accuracy))
	var clamps []Clamp
	for _, name := range scores.Accuracy.Names() {
		total := 0.0
		for _, m := range Metrics() {
			s := scores.For(m)[name]
			if clamped, ok := clampUnit(s); !ok {
				logrus.Warnf("head %q: normalized %s score %v outside [0,1]; clamped to %v", name, m, s, clamped)
				clamps = append(clamps, Clamp{Head: name, Metric: m, Value: s})
				s = clamped
			}
			total += s * c.For(m)
		}
		weighted[name] = total
	}
	return weighted, clamps
}

// clampUnit clamps v to [0,1]. ok is false when v needed clamping.
func clampUnit(v float64) (clamped float64, ok bool) {
	switch {
	case math.IsNaN(v):
		return 0, false
	case v < 0:
		return 0, false
	case v > 1:
		return 1, false
	default:
		return v, true
	}
}
