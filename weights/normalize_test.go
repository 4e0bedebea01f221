package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_MinMaxSpansUnitInterval(t *testing.T) {
	// GIVEN three distinct raw values
	raw := ScoreSet{"a": 2, "b": 4, "c": 10}

	// WHEN normalized
	got, degenerate := Normalize(raw, DegenerateZero)

	// THEN the minimum maps to 0, the maximum to 1, the middle proportionally
	assert.False(t, degenerate)
	assert.Equal(t, 0.0, got["a"])
	assert.InDelta(t, 0.25, got["b"], 1e-12)
	assert.Equal(t, 1.0, got["c"])
}

func TestNormalize_DegenerateCategory(t *testing.T) {
	tests := []struct {
		name   string
		policy DegeneratePolicy
		want   float64
	}{
		{"zero policy collapses to zero", DegenerateZero, 0},
		{"empty policy defaults to zero", "", 0},
		{"one policy scores every head 1", DegenerateOne, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN every head with the same raw value
			raw := ScoreSet{"a": 0.7, "b": 0.7, "c": 0.7}

			got, degenerate := Normalize(raw, tt.policy)

			assert.True(t, degenerate)
			require.Len(t, got, 3)
			for name, v := range got {
				assert.Equal(t, tt.want, v, "head %s", name)
			}
		})
	}
}

func TestNormalize_SingleHeadIsDegenerate(t *testing.T) {
	got, degenerate := Normalize(ScoreSet{"only": 42}, DegenerateZero)
	assert.True(t, degenerate)
	assert.Equal(t, 0.0, got["only"])
}

func TestNormalize_EmptyInput(t *testing.T) {
	got, degenerate := Normalize(ScoreSet{}, DegenerateZero)
	assert.False(t, degenerate)
	assert.Empty(t, got)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := ScoreSet{"a": 1, "b": 3}
	_, _ = Normalize(raw, DegenerateZero)
	assert.Equal(t, ScoreSet{"a": 1, "b": 3}, raw)
}

func TestInvertLatency_FastestScoresHighest(t *testing.T) {
	// GIVEN latencies where c is the slowest
	got := InvertLatency(ScoreSet{"a": 10, "b": 25, "c": 50})

	// THEN the slowest head scores 0 and faster heads score 1 - l/max
	assert.InDelta(t, 0.8, got["a"], 1e-12)
	assert.InDelta(t, 0.5, got["b"], 1e-12)
	assert.Equal(t, 0.0, got["c"])
}

func TestInvertLatency_ScaleInvariant(t *testing.T) {
	base := ScoreSet{"a": 3, "b": 7.5, "c": 12}
	scaled := ScoreSet{"a": 3000, "b": 7500, "c": 12000}

	want := InvertLatency(base)
	got := InvertLatency(scaled)
	for name := range base {
		assert.InDelta(t, want[name], got[name], 1e-12, "head %s", name)
	}
}

func TestInvertLatency_AllZeroLatency(t *testing.T) {
	// GIVEN heads that all report zero latency
	got := InvertLatency(ScoreSet{"a": 0, "b": 0})

	// THEN every head is maximally fast instead of dividing by zero
	assert.Equal(t, ScoreSet{"a": 1, "b": 1}, got)
}

func TestValidDegeneratePolicies_Sorted(t *testing.T) {
	assert.Equal(t, []string{"one", "zero"}, ValidDegeneratePolicies())
	assert.True(t, IsValidDegeneratePolicy("zero"))
	assert.True(t, IsValidDegeneratePolicy(""))
	assert.False(t, IsValidDegeneratePolicy("half"))
}
