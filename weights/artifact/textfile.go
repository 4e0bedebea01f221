package artifact

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/headweight/weights"
)

var allOutcomes = []weights.Outcome{
	weights.OutcomeNormal,
	weights.OutcomeDegenerateMetric,
	weights.OutcomeUniformFallback,
}

// WriteTextfile writes res in Prometheus text exposition format to path,
// for pickup by a textfile collector. The file is replaced atomically.
func WriteTextfile(path string, res *weights.Result) error {
	reg := prometheus.NewRegistry()

	weight := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "headweight_weight",
		Help: "Share of ensemble influence assigned to the head.",
	}, []string{"head"})
	score := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "headweight_score",
		Help: "Normalized per-category score of the head, in [0,1].",
	}, []string{"head", "metric"})
	outcome := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "headweight_outcome",
		Help: "1 for the outcome of the last weighting run, 0 otherwise.",
	}, []string{"outcome"})
	reg.MustRegister(weight, score, outcome)

	for _, name := range res.Heads {
		w, _ := res.Distribution.Weight(name)
		weight.WithLabelValues(name).Set(w)
		for _, m := range weights.Metrics() {
			score.WithLabelValues(name, string(m)).Set(res.Normalized.For(m)[name])
		}
	}
	for _, o := range allOutcomes {
		v := 0.0
		if o == res.Outcome {
			v = 1
		}
		outcome.WithLabelValues(string(o)).Set(v)
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
