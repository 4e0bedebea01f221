package weights

import (
	"fmt"
	"math/rand"
)

func ptr(v float64) *float64 { return &v }

// newTestProfile builds a HeadProfile with every latency and confidence
// statistic populated.
func newTestProfile(name string, errorRate, latencyMs, confidence float64) HeadProfile {
	return HeadProfile{
		Name:      name,
		ErrorRate: errorRate,
		Latency: SampleStats{
			Min: ptr(latencyMs * 0.5), Max: ptr(latencyMs * 2), Mean: ptr(latencyMs),
			Median: ptr(latencyMs), StdDev: ptr(latencyMs * 0.1),
		},
		Confidence: SampleStats{
			Min: ptr(confidence), Max: ptr(confidence), Mean: ptr(confidence),
			Median: ptr(confidence), StdDev: ptr(0),
		},
		TestCount: 100,
	}
}

// scenarioProfiles is the reference A/B/C scenario.
func scenarioProfiles() []HeadProfile {
	return []HeadProfile{
		newTestProfile("A", 0.0, 10, 0.9),
		newTestProfile("B", 0.5, 10, 0.9),
		newTestProfile("C", 0.0, 50, 0.1),
	}
}

// randomProfiles draws n heads from a seeded source so property tests are
// reproducible.
func randomProfiles(rng *rand.Rand, n int) []HeadProfile {
	profiles := make([]HeadProfile, n)
	for i := range profiles {
		profiles[i] = newTestProfile(
			fmt.Sprintf("head-%02d", i),
			rng.Float64(),
			1+rng.Float64()*200,
			rng.Float64(),
		)
	}
	return profiles
}
