package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/headweight/weights"
	"github.com/inference-sim/headweight/weights/artifact"
	"github.com/inference-sim/headweight/weights/profile"
)

// Policy is one named coefficient set in defaults.yaml.
type Policy struct {
	Method     string  `yaml:"method"`
	Accuracy   float64 `yaml:"accuracy"`
	Speed      float64 `yaml:"speed"`
	Confidence float64 `yaml:"confidence"`
}

// Coefficients returns the policy's coefficients, validated.
func (p Policy) Coefficients() (weights.Coefficients, error) {
	c := weights.Coefficients{Accuracy: p.Accuracy, Speed: p.Speed, Confidence: p.Confidence}
	return c, c.Validate()
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version         string            `yaml:"version"`
	DefaultPolicy   string            `yaml:"default_policy"`
	DegenerateScore string            `yaml:"degenerate_score"`
	Policies        map[string]Policy `yaml:"policies"`
	ProfileDir      string            `yaml:"profile_dir"`
	OutputDir       string            `yaml:"output_dir"`
}

// builtinConfig is used when no defaults file exists.
func builtinConfig() Config {
	c := weights.DefaultCoefficients()
	return Config{
		DefaultPolicy:   artifact.DefaultMethod,
		DegenerateScore: string(weights.DegenerateZero),
		Policies: map[string]Policy{
			artifact.DefaultMethod: {Method: artifact.DefaultMethod, Accuracy: c.Accuracy, Speed: c.Speed, Confidence: c.Confidence},
		},
		ProfileDir: profile.DefaultDir,
		OutputDir:  ".",
	}
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults YAML %s: %w", path, err)
	}
	if len(cfg.Policies) == 0 {
		return Config{}, fmt.Errorf("defaults file %s defines no policies", path)
	}
	if _, ok := cfg.Policies[cfg.DefaultPolicy]; !ok {
		return Config{}, fmt.Errorf("defaults file %s: default_policy %q is not defined; valid: %v",
			path, cfg.DefaultPolicy, cfg.PolicyNames())
	}
	if cfg.DegenerateScore != "" && !weights.IsValidDegeneratePolicy(cfg.DegenerateScore) {
		return Config{}, fmt.Errorf("defaults file %s: unknown degenerate_score %q; valid: %v",
			path, cfg.DegenerateScore, weights.ValidDegeneratePolicies())
	}
	return cfg, nil
}

// resolveDefaultsConfig loads path, or the built-in config when path is the
// default location and no file is there. An explicitly named file must exist.
func resolveDefaultsConfig(path string, explicit bool) (Config, error) {
	cfg, err := loadDefaultsConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("no defaults file at %s; using built-in policy %s", path, artifact.DefaultMethod)
		return builtinConfig(), nil
	}
	return Config{}, err
}

// PolicyNames returns the configured policy names, sorted.
func (c Config) PolicyNames() []string {
	names := make([]string, 0, len(c.Policies))
	for name := range c.Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Policy returns the named policy, or the default policy when name is empty.
func (c Config) Policy(name string) (string, Policy, error) {
	if name == "" {
		name = c.DefaultPolicy
	}
	p, ok := c.Policies[name]
	if !ok {
		return "", Policy{}, fmt.Errorf("unknown policy %q; valid: %v", name, c.PolicyNames())
	}
	if p.Method == "" {
		p.Method = name
	}
	return name, p, nil
}
