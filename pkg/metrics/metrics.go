package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "math_agent"

// Recorder holds every collector of the service. A nil *Recorder records nothing.
type Recorder struct {
	StageDuration   *prometheus.HistogramVec
	RouteDecisions  *prometheus.CounterVec
	PipelineResults *prometheus.CounterVec
	GuardrailChecks *prometheus.CounterVec
	Feedback        *prometheus.CounterVec
	KnowledgeIngest *prometheus.CounterVec
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of each pipeline stage",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage", "outcome"},
		),
		RouteDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_decisions_total",
				Help:      "Branch taken after knowledge base retrieval",
			},
			[]string{"route"},
		),
		PipelineResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_results_total",
				Help:      "Terminal stage reached per query, by context source",
			},
			[]string{"stage", "source"},
		),
		GuardrailChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guardrail_checks_total",
				Help:      "Scope classification results",
			},
			[]string{"result"},
		),
		Feedback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_total",
				Help:      "Feedback refinements by result",
			},
			[]string{"result"},
		),
		KnowledgeIngest: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "knowledge_ingest_total",
				Help:      "Knowledge base passages processed by the ingestion consumer",
			},
			[]string{"result"},
		),
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
			},
			[]string{"method", "route"},
		),
	}
}

func (r *Recorder) ObserveStage(stage, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

func (r *Recorder) RecordRoute(route string) {
	if r == nil {
		return
	}
	r.RouteDecisions.WithLabelValues(route).Inc()
}

func (r *Recorder) RecordResult(stage, source string) {
	if r == nil {
		return
	}
	r.PipelineResults.WithLabelValues(stage, source).Inc()
}

func (r *Recorder) RecordGuardrail(result string) {
	if r == nil {
		return
	}
	r.GuardrailChecks.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordFeedback(result string) {
	if r == nil {
		return
	}
	r.Feedback.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordIngest(result string) {
	if r == nil {
		return
	}
	r.KnowledgeIngest.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveRequest(method, route, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestCount.WithLabelValues(method, route, status).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
