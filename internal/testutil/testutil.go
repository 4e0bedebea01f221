// Package testutil provides shared test infrastructure for headweight.
// It consolidates profile-document fixtures and float assertion helpers used
// across weights/, weights/profile/, weights/artifact/ and cmd/ tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Head describes one head of a fixture profile document. Every latency and
// confidence statistic is derived from the two means so fixtures carry the
// full set of fields a real profiler writes.
type Head struct {
	Name       string
	ErrorRate  float64
	LatencyMs  float64
	Confidence float64
}

// HeadEntry renders h as a profiler head entry.
func HeadEntry(h Head) map[string]any {
	return map[string]any{
		"head_name":  h.Name,
		"test_count": 100,
		"errors":     int(math.Round(h.ErrorRate * 100)),
		"error_rate": h.ErrorRate,
		"latency": map[string]any{
			"min_ms":    h.LatencyMs * 0.5,
			"max_ms":    h.LatencyMs * 2,
			"mean_ms":   h.LatencyMs,
			"median_ms": h.LatencyMs,
			"stdev_ms":  h.LatencyMs * 0.1,
		},
		"confidence": map[string]any{
			"min":    h.Confidence,
			"max":    h.Confidence,
			"mean":   h.Confidence,
			"median": h.Confidence,
			"stdev":  0.0,
		},
	}
}

// ProfileDocument builds a profiler report with the given heads.
func ProfileDocument(heads ...Head) map[string]any {
	entries := make(map[string]any, len(heads))
	for _, h := range heads {
		entries[h.Name] = HeadEntry(h)
	}
	return map[string]any{
		"timestamp": "2026-10-19T09:00:00",
		"test_summary": map[string]any{
			"total_heads":    len(heads),
			"profiled_heads": len(heads),
		},
		"heads": entries,
	}
}

// WriteJSON marshals doc into dir/name and returns the path.
func WriteJSON(t *testing.T, dir, name string, doc any) string {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// ScenarioHeads returns the three-head reference scenario: A is accurate,
// fast and confident; B is fast and confident but fails half its trials;
// C is accurate but slow and unsure.
func ScenarioHeads() []Head {
	return []Head{
		{Name: "A", ErrorRate: 0.0, LatencyMs: 10, Confidence: 0.9},
		{Name: "B", ErrorRate: 0.5, LatencyMs: 10, Confidence: 0.9},
		{Name: "C", ErrorRate: 0.0, LatencyMs: 50, Confidence: 0.1},
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
