package weights

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_RawMetrics(t *testing.T) {
	raw, err := Extract(scenarioProfiles())
	require.NoError(t, err)

	assert.Equal(t, ScoreSet{"A": 1, "B": 0.5, "C": 1}, raw.Accuracy)
	assert.Equal(t, ScoreSet{"A": 10, "B": 10, "C": 50}, raw.Latency)
	assert.Equal(t, ScoreSet{"A": 0.9, "B": 0.9, "C": 0.1}, raw.Confidence)
}

func TestExtract_EmptyProfileSet(t *testing.T) {
	_, err := Extract(nil)
	assert.ErrorIs(t, err, ErrEmptyProfileSet)
}

func TestExtract_MissingMeans_MalformedProfile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HeadProfile)
		field  string
	}{
		{"missing latency mean", func(p *HeadProfile) { p.Latency.Mean = nil }, "latency.mean_ms"},
		{"missing confidence mean", func(p *HeadProfile) { p.Confidence.Mean = nil }, "confidence.mean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN one head without a required mean
			profiles := scenarioProfiles()
			tt.mutate(&profiles[1])

			_, err := Extract(profiles)

			// THEN extraction fails as a malformed profile naming head and field
			require.ErrorIs(t, err, ErrMalformedProfile)
			var pe *ProfileError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "B", pe.Head)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestValidateProfiles_RejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HeadProfile)
	}{
		{"negative error rate", func(p *HeadProfile) { p.ErrorRate = -0.1 }},
		{"error rate above one", func(p *HeadProfile) { p.ErrorRate = 1.5 }},
		{"NaN error rate", func(p *HeadProfile) { p.ErrorRate = math.NaN() }},
		{"negative latency", func(p *HeadProfile) { p.Latency.Mean = ptr(-1) }},
		{"infinite latency", func(p *HeadProfile) { p.Latency.Max = ptr(math.Inf(1)) }},
		{"confidence above one", func(p *HeadProfile) { p.Confidence.Mean = ptr(1.01) }},
		{"negative confidence stdev", func(p *HeadProfile) { p.Confidence.StdDev = ptr(-0.2) }},
		{"empty name", func(p *HeadProfile) { p.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := scenarioProfiles()
			tt.mutate(&profiles[0])
			assert.ErrorIs(t, ValidateProfiles(profiles), ErrMalformedProfile)
		})
	}
}

func TestValidateProfiles_DuplicateHead(t *testing.T) {
	profiles := append(scenarioProfiles(), newTestProfile("A", 0.1, 5, 0.5))
	err := ValidateProfiles(profiles)
	require.ErrorIs(t, err, ErrMalformedProfile)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateProfiles_MismatchedStatisticFields(t *testing.T) {
	// GIVEN one head that omits its latency median while the others report it
	profiles := scenarioProfiles()
	profiles[2].Latency.Median = nil

	err := ValidateProfiles(profiles)

	// THEN the run is rejected: all heads must carry the same statistics
	require.ErrorIs(t, err, ErrMalformedProfile)
	var pe *ProfileError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "C", pe.Head)
	assert.Equal(t, "latency", pe.Field)
}

func TestValidateProfiles_OnlyMeansIsEnough(t *testing.T) {
	profiles := []HeadProfile{
		{Name: "x", Latency: SampleStats{Mean: ptr(3)}, Confidence: SampleStats{Mean: ptr(0.4)}},
		{Name: "y", ErrorRate: 0.2, Latency: SampleStats{Mean: ptr(6)}, Confidence: SampleStats{Mean: ptr(0.8)}},
	}
	assert.NoError(t, ValidateProfiles(profiles))
}

func TestValidateProfiles_DoesNotReorderInput(t *testing.T) {
	profiles := []HeadProfile{newTestProfile("z", 0, 1, 0.5), newTestProfile("a", 0, 1, 0.5)}
	require.NoError(t, ValidateProfiles(profiles))
	assert.Equal(t, "z", profiles[0].Name)
}
