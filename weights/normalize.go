package weights

import (
	"fmt"
	"sort"
)

// DegeneratePolicy selects the normalized score given to every head when a
// category has zero spread (all heads report the same raw value).
type DegeneratePolicy string

const (
	// DegenerateZero collapses a degenerate category to 0 for every head.
	// This matches the historical weighting output bit for bit.
	DegenerateZero DegeneratePolicy = "zero"
	// DegenerateOne scores a degenerate category 1.0 for every head, so a
	// metric that all heads satisfy equally still contributes its coefficient.
	DegenerateOne DegeneratePolicy = "one"
)

var validDegeneratePolicies = map[DegeneratePolicy]bool{
	DegenerateZero: true,
	DegenerateOne:  true,
	"":             true, // empty defaults to zero
}

// IsValidDegeneratePolicy reports whether name is a recognized policy.
func IsValidDegeneratePolicy(name string) bool {
	return validDegeneratePolicies[DegeneratePolicy(name)]
}

// ValidDegeneratePolicies returns sorted non-empty policy names.
func ValidDegeneratePolicies() []string {
	names := make([]string, 0, len(validDegeneratePolicies))
	for p := range validDegeneratePolicies {
		if p != "" {
			names = append(names, string(p))
		}
	}
	sort.Strings(names)
	return names
}

func (p DegeneratePolicy) score() float64 {
	switch p {
	case DegenerateZero, "":
		return 0
	case DegenerateOne:
		return 1
	default:
		panic(fmt.Sprintf("unknown degenerate policy %q", p))
	}
}

// Normalize rescales values onto [0,1] with min-max scaling:
// (v - min) / (max - min). When max == min the category is degenerate and
// every head receives the policy's constant score; the second return value
// reports that case. An empty input yields an empty, non-degenerate set.
func Normalize(values ScoreSet, policy DegeneratePolicy) (ScoreSet, bool) {
	out := make(ScoreSet, len(values))
	if len(values) == 0 {
		return out, false
	}
	lo, hi := values.bounds()
	if hi <= lo {
		c := policy.score()
		for name := range values {
			out[name] = c
		}
		return out, true
	}
	span := hi - lo
	for name, v := range values {
		out[name] = (v - lo) / span
	}
	return out, false
}

// InvertLatency converts mean latencies (lower is better) into speed scores
// (higher is better): 1 - latency/max_latency. The result is invariant to
// scaling every latency by the same positive constant. When every head reports
// zero latency all heads score 1.0.
func InvertLatency(latency ScoreSet) ScoreSet {
	out := make(ScoreSet, len(latency))
	if len(latency) == 0 {
		return out
	}
	_, hi := latency.bounds()
	for name, v := range latency {
		if hi <= 0 {
			out[name] = 1.0
			continue
		}
		out[name] = 1.0 - v/hi
	}
	return out
}
