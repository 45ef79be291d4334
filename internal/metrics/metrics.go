package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "villageforge_generations_total",
		Help: "Prompts sent to the model server, by source and outcome.",
	}, []string{"source", "status"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "villageforge_generation_duration_seconds",
		Help:    "Time spent waiting for the model server to answer.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"source"})

	GenerationRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "villageforge_generation_record_errors_total",
		Help: "Generation history insert failures.",
	})

	BatchRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "villageforge_batch_runs_total",
		Help: "Completed batch runs.",
	})
)

// Status label values for GenerationsTotal.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ObserveGeneration counts one generation and its latency.
func ObserveGeneration(source string, seconds float64, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	GenerationsTotal.WithLabelValues(source, status).Inc()
	GenerationDuration.WithLabelValues(source).Observe(seconds)
}
