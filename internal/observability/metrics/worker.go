package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// WorkerMetrics instruments the batch worker: one observation per claim
// batch run plus per-document failure accounting.
type WorkerMetrics struct {
	registry *prometheus.Registry

	batchTotal     *prometheus.CounterVec
	batchDuration  *prometheus.HistogramVec
	batchInFlight  prometheus.Gauge
	batchDocuments *prometheus.HistogramVec
	stepFailures   *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsdesk",
			Subsystem: "worker",
			Name:      "claim_batch_total",
			Help:      "Total claim batch runs by outcome.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsdesk",
			Subsystem: "worker",
			Name:      "claim_batch_duration_seconds",
			Help:      "Claim batch run duration in seconds by outcome.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimsdesk",
			Subsystem: "worker",
			Name:      "claim_batch_in_flight",
			Help:      "Number of claim batch runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsdesk",
			Subsystem: "worker",
			Name:      "claim_batch_documents",
			Help:      "Distribution of documents picked up per batch run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	stepFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsdesk",
			Subsystem: "worker",
			Name:      "pipeline_step_failures_total",
			Help:      "Total per-document pipeline step failures inside batch runs.",
		},
		[]string{"service", "step"},
	)

	registry.MustRegister(batchTotal, batchDuration, batchInFlight, batchDocuments, stepFailures)

	return &WorkerMetrics{
		registry:       registry,
		batchTotal:     batchTotal,
		batchDuration:  batchDuration,
		batchInFlight:  batchInFlight,
		batchDocuments: batchDocuments,
		stepFailures:   stepFailures,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

// FinishBatch records one completed batch run. "partial" means the run
// finished but some documents failed a step.
func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, result *domain.BatchResult, err error) {
	m.batchInFlight.Dec()

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case result != nil && result.Processed < result.Total:
		status = "partial"
	}

	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())

	if result == nil {
		return
	}
	m.batchDocuments.WithLabelValues(service).Observe(float64(result.Total))
	for _, item := range result.Items {
		if item.Failed() {
			m.stepFailures.WithLabelValues(service, item.Step).Inc()
		}
	}
}
