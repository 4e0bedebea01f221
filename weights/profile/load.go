// Package profile reads head profiling reports: it locates the newest report
// in a profile directory, validates it against the embedded JSON Schema, and
// decodes it into weights.HeadProfile values.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/headweight/weights"
)

// Report is a decoded profiling report.
type Report struct {
	Source    string // path or label the report was read from
	Timestamp string // profiler timestamp, verbatim; empty when absent
	Profiles  []weights.HeadProfile
}

// reportDoc mirrors the profiler's JSON layout. Keys the weighting does not
// use (test_summary, analysis, recommendations) are ignored.
type reportDoc struct {
	Timestamp string               `mapstructure:"timestamp"`
	Heads     map[string]headEntry `mapstructure:"heads"`
}

type headEntry struct {
	HeadName   string          `mapstructure:"head_name"`
	TestCount  int             `mapstructure:"test_count"`
	Errors     int             `mapstructure:"errors"`
	ErrorRate  *float64        `mapstructure:"error_rate"`
	Latency    latencyEntry    `mapstructure:"latency"`
	Confidence confidenceEntry `mapstructure:"confidence"`
}

type latencyEntry struct {
	Min    *float64 `mapstructure:"min_ms"`
	Max    *float64 `mapstructure:"max_ms"`
	Mean   *float64 `mapstructure:"mean_ms"`
	Median *float64 `mapstructure:"median_ms"`
	StdDev *float64 `mapstructure:"stdev_ms"`
}

type confidenceEntry struct {
	Min    *float64 `mapstructure:"min"`
	Max    *float64 `mapstructure:"max"`
	Mean   *float64 `mapstructure:"mean"`
	Median *float64 `mapstructure:"median"`
	StdDev *float64 `mapstructure:"stdev"`
}

// Load reads and parses the profiling report at path.
// A missing file yields weights.ErrInputNotFound; invalid content yields
// weights.ErrMalformedProfile or weights.ErrEmptyProfileSet.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", weights.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	logrus.Debugf("read %d bytes of profile data from %s", len(data), path)
	return Parse(data, path)
}

// Parse decodes a profiling report from raw JSON. source labels the input in
// error messages. The returned profiles are sorted by head name and have
// passed weights.ValidateProfiles.
func Parse(data []byte, source string) (*Report, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w %s: invalid JSON: %v", weights.ErrMalformedProfile, source, err)
	}
	if violations := validateDocument(doc); len(violations) > 0 {
		return nil, &weights.SchemaError{Source: source, Violations: violations}
	}

	var rd reportDoc
	if err := mapstructure.Decode(doc, &rd); err != nil {
		return nil, fmt.Errorf("%w %s: %v", weights.ErrMalformedProfile, source, err)
	}

	names := make([]string, 0, len(rd.Heads))
	for name := range rd.Heads {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]weights.HeadProfile, 0, len(names))
	for _, name := range names {
		p, err := toHeadProfile(name, rd.Heads[name])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := weights.ValidateProfiles(profiles); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &Report{Source: source, Timestamp: rd.Timestamp, Profiles: profiles}, nil
}

func toHeadProfile(name string, e headEntry) (weights.HeadProfile, error) {
	if e.HeadName != "" && e.HeadName != name {
		return weights.HeadProfile{}, &weights.ProfileError{Head: name, Field: "head_name",
			Reason: fmt.Sprintf("does not match its key (got %q)", e.HeadName)}
	}
	p := weights.HeadProfile{
		Name:      name,
		TestCount: e.TestCount,
		Errors:    e.Errors,
		Latency: weights.SampleStats{
			Min: e.Latency.Min, Max: e.Latency.Max, Mean: e.Latency.Mean,
			Median: e.Latency.Median, StdDev: e.Latency.StdDev,
		},
		Confidence: weights.SampleStats{
			Min: e.Confidence.Min, Max: e.Confidence.Max, Mean: e.Confidence.Mean,
			Median: e.Confidence.Median, StdDev: e.Confidence.StdDev,
		},
	}
	switch {
	case e.ErrorRate != nil:
		p.ErrorRate = *e.ErrorRate
	case e.TestCount > 0:
		if e.Errors > e.TestCount {
			return weights.HeadProfile{}, &weights.ProfileError{Head: name, Field: "errors",
				Reason: fmt.Sprintf("%d errors exceed test_count %d", e.Errors, e.TestCount)}
		}
		p.ErrorRate = float64(e.Errors) / float64(e.TestCount)
	default:
		// No failure data at all counts as a perfect record.
		p.ErrorRate = 0
	}
	return p, nil
}
