package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics instruments the api process: the HTTP surface itself
// plus report generation and knowledge search outcomes.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	reportTotal    *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec

	knowledgeSearchTotal *prometheus.CounterVec
	knowledgeHits        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimsdesk",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reportTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsdesk",
			Subsystem: "report",
			Name:      "generated_total",
			Help:      "Total report generation attempts by scope and outcome.",
		},
		[]string{"service", "scope", "status"},
	)
	reportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsdesk",
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Report generation duration in seconds by scope.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "scope"},
	)
	knowledgeSearchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsdesk",
			Subsystem: "knowledge",
			Name:      "search_total",
			Help:      "Total knowledge base searches.",
		},
		[]string{"service"},
	)
	knowledgeHits := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsdesk",
			Subsystem: "knowledge",
			Name:      "retrieved_hits",
			Help:      "Distribution of retrieved chunks per knowledge search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		reportTotal,
		reportDuration,
		knowledgeSearchTotal,
		knowledgeHits,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		reportTotal:          reportTotal,
		reportDuration:       reportDuration,
		knowledgeSearchTotal: knowledgeSearchTotal,
		knowledgeHits:        knowledgeHits,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource IDs so the path label stays low-cardinality.
func normalizePath(path string) string {
	collapse := func(prefix, placeholder string) (string, bool) {
		if !strings.HasPrefix(path, prefix) {
			return "", false
		}
		rest := strings.TrimPrefix(path, prefix)
		if rest == "" {
			return prefix, true
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return prefix + placeholder + rest[i:], true
		}
		return prefix + placeholder, true
	}

	if p, ok := collapse("/v1/claims/", "{claim_id}"); ok {
		return p
	}
	if p, ok := collapse("/v1/documents/", "{document_id}"); ok {
		return p
	}
	return path
}

func (m *HTTPServerMetrics) RecordReport(service, scope string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reportTotal.WithLabelValues(service, scope, status).Inc()
	m.reportDuration.WithLabelValues(service, scope).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordKnowledgeSearch(service string, hits int) {
	m.knowledgeSearchTotal.WithLabelValues(service).Inc()
	m.knowledgeHits.WithLabelValues(service).Observe(float64(hits))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
