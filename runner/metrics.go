package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeInvalidInput = "invalid_input"

var (
	// runsTotal counts evaluated inputs by kind, machine and outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "automata_runs_total",
		Help: "Total number of inputs evaluated by kind, machine and outcome",
	}, []string{"kind", "machine", "outcome"})

	// runSteps tracks symbols consumed, configurations explored or
	// transitions applied per input.
	runSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "automata_run_steps",
		Help:    "Steps taken per evaluated input by kind",
		Buckets: prometheus.ExponentialBuckets(1, 4, 11),
	}, []string{"kind"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "automata_batches_total",
		Help: "Total number of batches run by kind",
	}, []string{"kind"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "automata_batch_duration_seconds",
		Help:    "Duration of batch runs by kind",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"kind"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}

func observeOutcome(m Machine, out Outcome) {
	kind := m.Kind().String()

	if out.Err != nil {
		runsTotal.WithLabelValues(kind, sanitizeMachine(m.Name()), outcomeInvalidInput).Inc()

		return
	}

	runsTotal.WithLabelValues(kind, sanitizeMachine(m.Name()), out.Verdict.Outcome.String()).Inc()
	runSteps.WithLabelValues(kind).Observe(float64(out.Verdict.Steps))
}
