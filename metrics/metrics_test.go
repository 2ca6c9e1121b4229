package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	return New(), reader
}

func collectedMetricNames(t *testing.T, reader *sdkmetric.ManualReader) []string {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	return names
}

func TestRecorder_PhaseDuration(t *testing.T) {
	r, reader := newTestRecorder(t)
	r.PhaseDuration(context.Background(), "initial", 1.5)

	assert.Contains(t, collectedMetricNames(t, reader), "phase_duration_seconds")
}

func TestRecorder_AnalyzerOutcome(t *testing.T) {
	r, reader := newTestRecorder(t)
	r.AnalyzerOutcome(context.Background(), "crew_compliance", "success")
	r.AnalyzerOutcome(context.Background(), "maintenance", "timeout")

	assert.Contains(t, collectedMetricNames(t, reader), "analyzer_outcome_total")
}

func TestRecorder_CachesInstrumentsAcrossCalls(t *testing.T) {
	r, _ := newTestRecorder(t)
	ctx := context.Background()
	r.CheckpointDegraded(ctx, "phase1_complete")
	r.CheckpointDegraded(ctx, "phase2_complete")

	assert.Len(t, r.counters, 1, "repeated calls to the same metric name must reuse one instrument")
}

func TestRecorder_OrchestrationUnavailable(t *testing.T) {
	r, reader := newTestRecorder(t)
	r.OrchestrationUnavailable(context.Background(), "all_safety_analyzers_failed")

	assert.Contains(t, collectedMetricNames(t, reader), "orchestration_unavailable_total")
}
