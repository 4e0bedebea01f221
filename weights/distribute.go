package weights

// Distribute converts non-negative weighted scores into a probability
// distribution: value / total. When the total is zero (no discriminating
// signal at all) every head receives 1/N; the second return value reports
// that fallback. Negative or NaN scores are treated as zero.
//
// Panics on an empty score set; callers validate head count first.
func Distribute(weighted ScoreSet) (Distribution, bool) {
	if len(weighted) == 0 {
		panic("Distribute: empty score set")
	}
	names := weighted.Names()
	total := 0.0
	for _, name := range names {
		total += nonNegative(weighted[name])
	}
	out := make(map[string]float64, len(names))
	if total <= 0 {
		uniform := 1.0 / float64(len(names))
		for _, name := range names {
			out[name] = uniform
		}
		return newDistribution(out), true
	}
	for _, name := range names {
		out[name] = nonNegative(weighted[name]) / total
	}
	return newDistribution(out), false
}

func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
