// Package metrics provides Prometheus metrics for the question-answering pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for docqa.
// Each instance has its own registry.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	IngestsTotal   *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	ActiveSegments prometheus.Gauge
	AnswersTotal   *prometheus.CounterVec
	AnswerDuration *prometheus.HistogramVec
	GateSimilarity prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.IngestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docqa_ingests_total",
			Help: "Total number of document ingestions by outcome",
		},
		[]string{"outcome"},
	)

	m.IngestDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docqa_ingest_duration_seconds",
			Help:    "Duration of document ingestion in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	m.ActiveSegments = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "docqa_active_segments",
			Help: "Number of segments in the active index generation",
		},
	)

	m.AnswersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docqa_answers_total",
			Help: "Total number of answered questions by outcome",
		},
		[]string{"kind"},
	)

	m.AnswerDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docqa_answer_duration_seconds",
			Help:    "Duration of question answering in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	m.GateSimilarity = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docqa_gate_similarity",
			Help:    "Cosine similarity between questions and the document sample",
			Buckets: prometheus.LinearBuckets(-0.2, 0.1, 13),
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docqa_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docqa_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveIngest records one ingestion.
func (m *Metrics) ObserveIngest(outcome string, segments int, elapsed time.Duration) {
	m.IngestsTotal.WithLabelValues(outcome).Inc()
	m.IngestDuration.Observe(elapsed.Seconds())
	if outcome == driven.IngestSucceeded {
		m.ActiveSegments.Set(float64(segments))
	}
}

// ObserveAnswer records one answered question.
func (m *Metrics) ObserveAnswer(kind domain.AnswerKind, elapsed time.Duration) {
	m.AnswersTotal.WithLabelValues(kind.String()).Inc()
	m.AnswerDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

// ObserveSimilarity records a relevance gate score.
func (m *Metrics) ObserveSimilarity(similarity float64) {
	m.GateSimilarity.Observe(similarity)
}

// RecordHTTPRequest records an HTTP request with its status code.
func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
