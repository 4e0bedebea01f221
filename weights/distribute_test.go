package weights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistribute_Proportional(t *testing.T) {
	d, fallback := Distribute(ScoreSet{"a": 1.0, "b": 0.6, "c": 0.4})

	assert.False(t, fallback)
	w, ok := d.Weight("a")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, w, 1e-12)
	w, _ = d.Weight("b")
	assert.InDelta(t, 0.3, w, 1e-12)
	w, _ = d.Weight("c")
	assert.InDelta(t, 0.2, w, 1e-12)
	assert.InDelta(t, 1.0, d.Sum(), 1e-12)
}

func TestDistribute_ZeroTotal_UniformFallback(t *testing.T) {
	// GIVEN every weighted score is zero
	d, fallback := Distribute(ScoreSet{"a": 0, "b": 0, "c": 0, "d": 0})

	// THEN every head receives 1/N
	assert.True(t, fallback)
	for _, name := range d.Names() {
		w, _ := d.Weight(name)
		assert.Equal(t, 0.25, w)
	}
}

func TestDistribute_NegativeAndNaNTreatedAsZero(t *testing.T) {
	d, fallback := Distribute(ScoreSet{"a": -1, "b": math.NaN(), "c": 2})

	assert.False(t, fallback)
	w, _ := d.Weight("a")
	assert.Equal(t, 0.0, w)
	w, _ = d.Weight("b")
	assert.Equal(t, 0.0, w)
	w, _ = d.Weight("c")
	assert.Equal(t, 1.0, w)
}

func TestDistribute_EmptyPanics(t *testing.T) {
	assert.Panics(t, func() { Distribute(ScoreSet{}) })
}

func TestDistribution_MapIsACopy(t *testing.T) {
	d, _ := Distribute(ScoreSet{"a": 1, "b": 1})
	m := d.Map()
	m["a"] = 99

	w, _ := d.Weight("a")
	assert.Equal(t, 0.5, w)
	_, ok := d.Weight("missing")
	assert.False(t, ok)
}
