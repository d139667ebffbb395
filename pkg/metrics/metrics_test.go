package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordRoute("WEB_SEARCH")
	r.RecordRoute("WEB_SEARCH")
	r.RecordRoute("GENERATE")
	r.RecordResult("DONE", "Knowledge Base")
	r.RecordGuardrail("rejected")
	r.RecordFeedback("ok")
	r.RecordIngest("stored")
	r.ObserveStage("RETRIEVE_KB", "NO_CONTEXT", 120*time.Millisecond)
	r.ObserveRequest("POST", "/api/query", "200", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RouteDecisions.WithLabelValues("WEB_SEARCH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RouteDecisions.WithLabelValues("GENERATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PipelineResults.WithLabelValues("DONE", "Knowledge Base")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.GuardrailChecks.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RequestCount.WithLabelValues("POST", "/api/query", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.StageDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRoute("GENERATE")
		r.ObserveStage("GENERATE", "OK", time.Second)
		r.RecordResult("DONE", "N/A")
		r.RecordGuardrail("accepted")
		r.RecordFeedback("ok")
		r.RecordIngest("stored")
		r.ObserveRequest("GET", "/health", "200", time.Millisecond)
	})
}
