package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/headweight/weights"
	"github.com/inference-sim/headweight/weights/profile"
)

const testDefaultsYAML = `
version: "1"
default_policy: balanced
degenerate_score: one
profile_dir: profiles-from-file
output_dir: out-from-file
policies:
  balanced:
    method: adaptive_weighting_v1
    accuracy: 0.40
    speed: 0.30
    confidence: 0.30
  latency_first:
    accuracy: 0.30
    speed: 0.50
    confidence: 0.20
  broken:
    accuracy: 0.90
    speed: 0.30
    confidence: 0.30
`

func writeDefaults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// changedSet reports the named flags as set by the user.
func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestLoadDefaultsConfig_RepositoryFile(t *testing.T) {
	path := "defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "../defaults.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Skip("defaults.yaml not found, skipping integration test")
		}
	}

	// GIVEN the shipped defaults file
	cfg, err := loadDefaultsConfig(path)
	require.NoError(t, err)

	// THEN every policy carries valid coefficients
	for _, name := range cfg.PolicyNames() {
		_, p, err := cfg.Policy(name)
		require.NoError(t, err)
		_, err = p.Coefficients()
		assert.NoError(t, err, "policy %s", name)
	}
	// AND the default policy is the historical formula
	_, p, err := cfg.Policy("")
	require.NoError(t, err)
	c, err := p.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, weights.DefaultCoefficients(), c)
}

func TestLoadDefaultsConfig_StrictFields(t *testing.T) {
	// GIVEN a typo in a policy field
	path := writeDefaults(t, `
default_policy: p
policies:
  p:
    acuracy: 0.4
`)
	_, err := loadDefaultsConfig(path)
	assert.Error(t, err)
}

func TestLoadDefaultsConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no policies", "default_policy: p\n"},
		{"undefined default policy", "default_policy: q\npolicies:\n  p: {accuracy: 1}\n"},
		{"unknown degenerate score", "default_policy: p\ndegenerate_score: half\npolicies:\n  p: {accuracy: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadDefaultsConfig(writeDefaults(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestResolvePlan_FileValuesApplyUnlessFlagChanged(t *testing.T) {
	path := writeDefaults(t, testDefaultsYAML)
	flags := runSettings{
		ProfileDir:      profile.DefaultDir,
		OutputDir:       ".",
		DegenerateScore: "zero",
		DefaultsPath:    path,
	}

	// WHEN no flag was set explicitly
	plan, err := resolvePlan(flags, changedSet("defaults"))
	require.NoError(t, err)

	// THEN the file decides
	assert.Equal(t, "balanced", plan.PolicyName)
	assert.Equal(t, "adaptive_weighting_v1", plan.Method)
	assert.Equal(t, weights.DegenerateOne, plan.Options.Degenerate)
	assert.Equal(t, "profiles-from-file", plan.ProfileDir)
	assert.Equal(t, "out-from-file", plan.OutputDir)

	// WHEN the user sets the flags
	flags.ProfileDir = "p"
	flags.OutputDir = "o"
	plan, err = resolvePlan(flags, changedSet("defaults", "profile-dir", "output-dir", "degenerate-score"))
	require.NoError(t, err)

	// THEN the flags win
	assert.Equal(t, weights.DegenerateZero, plan.Options.Degenerate)
	assert.Equal(t, "p", plan.ProfileDir)
	assert.Equal(t, "o", plan.OutputDir)
}

func TestResolvePlan_PolicySelection(t *testing.T) {
	path := writeDefaults(t, testDefaultsYAML)

	plan, err := resolvePlan(runSettings{DefaultsPath: path, Policy: "latency_first"}, changedSet())
	require.NoError(t, err)
	assert.Equal(t, weights.Coefficients{Accuracy: 0.30, Speed: 0.50, Confidence: 0.20}, plan.Options.Coefficients)
	// a policy without a method is named after itself
	assert.Equal(t, "latency_first", plan.Method)

	_, err = resolvePlan(runSettings{DefaultsPath: path, Policy: "broken"}, changedSet())
	assert.ErrorIs(t, err, weights.ErrInvalidCoefficients)

	_, err = resolvePlan(runSettings{DefaultsPath: path, Policy: "missing"}, changedSet())
	assert.Error(t, err)
}

func TestResolvePlan_InlineCoefficientsOverridePolicy(t *testing.T) {
	path := writeDefaults(t, testDefaultsYAML)

	plan, err := resolvePlan(runSettings{
		DefaultsPath: path,
		Policy:       "latency_first",
		Coefficients: "accuracy:1",
	}, changedSet())
	require.NoError(t, err)
	assert.Equal(t, weights.Coefficients{Accuracy: 1}, plan.Options.Coefficients)

	_, err = resolvePlan(runSettings{DefaultsPath: path, Coefficients: "accuracy:0.5"}, changedSet())
	assert.ErrorIs(t, err, weights.ErrInvalidCoefficients)
}

func TestResolvePlan_MissingDefaultsFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "defaults.yaml")

	// GIVEN no file at the default location, THEN built-in policy is used
	plan, err := resolvePlan(runSettings{DefaultsPath: missing, DegenerateScore: "zero"}, changedSet())
	require.NoError(t, err)
	assert.Equal(t, weights.DefaultCoefficients(), plan.Options.Coefficients)
	assert.Equal(t, "adaptive_weighting_v1", plan.Method)
	assert.Equal(t, profile.DefaultDir, plan.ProfileDir)

	// GIVEN the user named the file explicitly, THEN its absence is an error
	_, err = resolvePlan(runSettings{DefaultsPath: missing}, changedSet("defaults"))
	assert.Error(t, err)
}

func TestResolvePlan_UnknownDegenerateScore(t *testing.T) {
	_, err := resolvePlan(runSettings{
		DefaultsPath:    filepath.Join(t.TempDir(), "none.yaml"),
		DegenerateScore: "half",
	}, changedSet("degenerate-score"))
	assert.Error(t, err)
}
