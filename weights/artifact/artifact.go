// Package artifact persists weighting results: the versioned JSON weight
// configuration consumed by the ensemble, and an optional Prometheus
// textfile for node-exporter style collection.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/headweight/weights"
)

// DefaultMethod identifies the weighting algorithm in emitted documents.
const DefaultMethod = "adaptive_weighting_v1"

// FilePrefix starts every emitted weight configuration file name.
const FilePrefix = "head_weights_"

// fileTimeLayout is the UTC timestamp embedded in file names.
const fileTimeLayout = "20060102T150405Z"

// maxNameAttempts bounds suffix probing when several runs land in the same second.
const maxNameAttempts = 100

// Document is the persisted weight configuration.
type Document struct {
	Timestamp         string                   `json:"timestamp"`
	RunID             string                   `json:"run_id"`
	CalculationMethod string                   `json:"calculation_method"`
	WeightFormula     string                   `json:"weight_formula"`
	Outcome           weights.Outcome          `json:"outcome"`
	DegenerateMetrics []weights.Metric         `json:"degenerate_metrics,omitempty"`
	DegeneratePolicy  weights.DegeneratePolicy `json:"degenerate_policy"`
	ClampedScores     []string                 `json:"clamped_scores,omitempty"`
	SourceProfile     string                   `json:"source_profile,omitempty"`
	Heads             map[string]float64       `json:"heads"`
}

// Metadata is the run provenance recorded alongside the weights.
type Metadata struct {
	Method string // calculation_method; DefaultMethod when empty
	Source string // input profile path
}

// Emitter writes one new weight configuration file per run into Dir.
// Existing files are never overwritten.
type Emitter struct {
	Dir   string
	Clock func() time.Time
	NewID func() string
}

// NewEmitter returns an Emitter writing into dir with the wall clock and
// random UUID run IDs.
func NewEmitter(dir string) *Emitter {
	return &Emitter{Dir: dir, Clock: time.Now, NewID: uuid.NewString}
}

// NewDocument renders a Result and its provenance into a Document.
func NewDocument(res *weights.Result, meta Metadata, now time.Time, runID string) Document {
	method := meta.Method
	if method == "" {
		method = DefaultMethod
	}
	doc := Document{
		Timestamp:         now.UTC().Format(time.RFC3339),
		RunID:             runID,
		CalculationMethod: method,
		WeightFormula:     res.Coefficients.Formula(),
		Outcome:           res.Outcome,
		DegenerateMetrics: res.DegenerateMetrics,
		DegeneratePolicy:  res.Degenerate,
		SourceProfile:     meta.Source,
		Heads:             res.Distribution.Map(),
	}
	for _, c := range res.Clamped {
		doc.ClampedScores = append(doc.ClampedScores, fmt.Sprintf("%s/%s", c.Head, c.Metric))
	}
	return doc
}

// Emit writes res as a new timestamped file and returns its path.
//
// The document is fully rendered before any file is created, and the file
// is created exclusively; a failed write removes it. No partial artifact is
// left behind on any error path.
func (e *Emitter) Emit(res *weights.Result, meta Metadata) (string, Document, error) {
	now := e.Clock()
	doc := NewDocument(res, meta, now, e.NewID())
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", Document{}, fmt.Errorf("encoding weight configuration: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", Document{}, fmt.Errorf("creating output directory %s: %w", e.Dir, err)
	}

	stamp := now.UTC().Format(fileTimeLayout)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := FilePrefix + stamp + ".json"
		if attempt > 1 {
			name = fmt.Sprintf("%s%s-%d.json", FilePrefix, stamp, attempt)
		}
		path := filepath.Join(e.Dir, name)
		err := writeExclusive(path, data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", Document{}, err
		}
		logrus.Infof("weight configuration saved to %s", path)
		return path, doc, nil
	}
	return "", Document{}, fmt.Errorf("no free file name for %s%s in %s after %d attempts",
		FilePrefix, stamp, e.Dir, maxNameAttempts)
}

func writeExclusive(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	_, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr == nil && closeErr == nil {
		return nil
	}
	if rmErr := os.Remove(path); rmErr != nil {
		logrus.Errorf("removing partial file %s: %v", path, rmErr)
	}
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	return fmt.Errorf("closing %s: %w", path, closeErr)
}

// Read loads a previously emitted Document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weight configuration: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing weight configuration %s: %w", path, err)
	}
	return &doc, nil
}
