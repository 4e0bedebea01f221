package weights

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Entry is one head's weight in a ranked listing.
type Entry struct {
	Head   string
	Weight float64
}

// Summary aggregates statistics over a Distribution.
type Summary struct {
	Ranked []Entry // weight descending, ties by head name ascending
	Mean   float64
	StdDev float64 // sample standard deviation; 0 for a single head
	Min    float64
	Max    float64
}

// Summarize computes ranking and spread statistics for d.
// Safe for an empty distribution (returns zero-value fields).
func Summarize(d Distribution) Summary {
	var s Summary
	if d.Len() == 0 {
		return s
	}
	names := d.Names()
	values := make([]float64, len(names))
	s.Ranked = make([]Entry, len(names))
	for i, name := range names {
		values[i] = d.weights[name]
		s.Ranked[i] = Entry{Head: name, Weight: values[i]}
	}
	sort.SliceStable(s.Ranked, func(i, j int) bool {
		return s.Ranked[i].Weight > s.Ranked[j].Weight
	})

	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	s.Min, s.Max = ScoreSet(d.weights).bounds()
	return s
}
