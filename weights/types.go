package weights

import (
	"math"
	"sort"
)

// SampleStats summarizes one measured sample (latency or confidence) of a head.
// Fields are pointers so that ingestion can tell "absent" from "zero".
type SampleStats struct {
	Min    *float64
	Max    *float64
	Mean   *float64
	Median *float64
	StdDev *float64
}

// populated returns a bitmask of the statistic fields that are set.
// Used to enforce that every head in a run carries the same fields.
func (s SampleStats) populated() uint8 {
	var mask uint8
	for i, f := range []*float64{s.Min, s.Max, s.Mean, s.Median, s.StdDev} {
		if f != nil {
			mask |= 1 << i
		}
	}
	return mask
}

// HeadProfile is the measured profile of one head over a batch of trials.
type HeadProfile struct {
	Name       string
	ErrorRate  float64     // fraction of failed trials, in [0,1]
	Latency    SampleStats // milliseconds
	Confidence SampleStats // each statistic in [0,1]

	// Provenance from the profiler; zero when not reported.
	TestCount int
	Errors    int
}

// Metric names one scoring category.
type Metric string

const (
	MetricAccuracy   Metric = "accuracy"
	MetricSpeed      Metric = "speed"
	MetricConfidence Metric = "confidence"
)

// Metrics lists the scoring categories in their canonical order.
func Metrics() []Metric {
	return []Metric{MetricAccuracy, MetricSpeed, MetricConfidence}
}

// ScoreSet maps head name to a scalar score for one category.
type ScoreSet map[string]float64

// Names returns the head names of s in sorted order.
func (s ScoreSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bounds returns the minimum and maximum value of s.
// Callers must ensure s is non-empty.
func (s ScoreSet) bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Distribution is a probability distribution over heads. It is immutable:
// construct it with newDistribution and read it through its accessors.
type Distribution struct {
	weights map[string]float64
}

func newDistribution(w map[string]float64) Distribution {
	return Distribution{weights: w}
}

// DistributionOf wraps previously persisted weights, e.g. read back from an
// artifact or the run ledger. m is copied.
func DistributionOf(m map[string]float64) Distribution {
	return newDistribution(Distribution{weights: m}.Map())
}

// Weight returns the weight of a head and whether the head is present.
func (d Distribution) Weight(name string) (float64, bool) {
	w, ok := d.weights[name]
	return w, ok
}

// Len returns the number of heads in the distribution.
func (d Distribution) Len() int { return len(d.weights) }

// Names returns head names in sorted order.
func (d Distribution) Names() []string {
	return ScoreSet(d.weights).Names()
}

// Map returns a copy of the head → weight mapping.
func (d Distribution) Map() map[string]float64 {
	out := make(map[string]float64, len(d.weights))
	for k, v := range d.weights {
		out[k] = v
	}
	return out
}

// Sum returns the total weight, summed in sorted head order.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, name := range d.Names() {
		total += d.weights[name]
	}
	return total
}
