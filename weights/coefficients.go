package weights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coefficientTolerance bounds |sum - 1| for a valid coefficient set.
const coefficientTolerance = 1e-9

// Coefficients are the per-category multipliers of the weighted sum.
// A valid set is non-negative, finite, and sums to 1.0.
type Coefficients struct {
	Accuracy   float64 `yaml:"accuracy"`
	Speed      float64 `yaml:"speed"`
	Confidence float64 `yaml:"confidence"`
}

// DefaultCoefficients returns the adaptive_weighting_v1 blend:
// accuracy 40%, speed 30%, confidence 30%.
func DefaultCoefficients() Coefficients {
	return Coefficients{Accuracy: 0.40, Speed: 0.30, Confidence: 0.30}
}

// For returns the coefficient of one category.
func (c Coefficients) For(m Metric) float64 {
	switch m {
	case MetricAccuracy:
		return c.Accuracy
	case MetricSpeed:
		return c.Speed
	case MetricConfidence:
		return c.Confidence
	default:
		panic(fmt.Sprintf("unknown metric %q", m))
	}
}

// Sum returns the total of all coefficients.
func (c Coefficients) Sum() float64 {
	return c.Accuracy + c.Speed + c.Confidence
}

// Validate checks that every coefficient is finite and non-negative and that
// they sum to 1.0.
func (c Coefficients) Validate() error {
	for _, m := range Metrics() {
		v := c.For(m)
		if !isFinite(v) {
			return fmt.Errorf("%w: %s coefficient must be finite, got %v", ErrInvalidCoefficients, m, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s coefficient must be non-negative, got %v", ErrInvalidCoefficients, m, v)
		}
	}
	if math.Abs(c.Sum()-1.0) > coefficientTolerance {
		return fmt.Errorf("%w: coefficients sum to %.6f, must sum to 1.0", ErrInvalidCoefficients, c.Sum())
	}
	return nil
}

// Formula renders the coefficients as a human-readable description,
// e.g. "accuracy(40%) + speed(30%) + confidence(30%)".
func (c Coefficients) Formula() string {
	parts := make([]string, 0, 3)
	for _, m := range Metrics() {
		pct := math.Round(c.For(m)*1000) / 10
		parts = append(parts, fmt.Sprintf("%s(%s%%)", m, strconv.FormatFloat(pct, 'f', -1, 64)))
	}
	return strings.Join(parts, " + ")
}

// ParseCoefficients parses a comma-separated list of "metric:value" pairs,
// e.g. "accuracy:0.5,speed:0.25,confidence:0.25". Metrics that are not listed
// get 0. The result is validated before it is returned.
func ParseCoefficients(s string) (Coefficients, error) {
	var c Coefficients
	if strings.TrimSpace(s) == "" {
		return c, fmt.Errorf("%w: empty coefficient list", ErrInvalidCoefficients)
	}
	seen := make(map[Metric]bool, 3)
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return c, fmt.Errorf("%w: invalid entry %q (expected metric:value)", ErrInvalidCoefficients, strings.TrimSpace(part))
		}
		m := Metric(strings.TrimSpace(kv[0]))
		if m != MetricAccuracy && m != MetricSpeed && m != MetricConfidence {
			return c, fmt.Errorf("%w: unknown metric %q; valid: accuracy, speed, confidence", ErrInvalidCoefficients, m)
		}
		if seen[m] {
			return c, fmt.Errorf("%w: duplicate metric %q", ErrInvalidCoefficients, m)
		}
		seen[m] = true
		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return c, fmt.Errorf("%w: invalid value for %q: %v", ErrInvalidCoefficients, m, err)
		}
		switch m {
		case MetricAccuracy:
			c.Accuracy = v
		case MetricSpeed:
			c.Speed = v
		case MetricConfidence:
			c.Confidence = v
		}
	}
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}
