// Package metrics records the orchestrator's operational telemetry:
// phase durations, analyzer outcomes, checkpoint degraded-writes, batch
// residual retries, and full-orchestration unavailability. Every
// recorder is an OpenTelemetry meter instrument cached by name, the same
// pattern the orchestration layer uses for everything else it emits.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "recovery-orchestrator"

// Recorder caches the instruments backing the orchestrator's metrics so
// that repeated calls to the same metric name reuse one instrument
// instead of re-registering it with the meter provider each time.
type Recorder struct {
	meter      metric.Meter
	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
}

// New builds a Recorder against the global OTel meter provider. Call
// once at service startup and share the returned Recorder.
func New() *Recorder {
	return &Recorder{
		meter:      otel.Meter(meterName),
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
	}
}

func (r *Recorder) histogram(name, description, unit string) (metric.Float64Histogram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h, nil
	}
	h, err := r.meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", name, err)
	}
	r.histograms[name] = h
	return h, nil
}

func (r *Recorder) counter(name, description string) (metric.Int64Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c, nil
	}
	c, err := r.meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	r.counters[name] = c
	return c, nil
}

// PhaseDuration records phase_duration_seconds{phase} for one completed
// orchestration phase.
func (r *Recorder) PhaseDuration(ctx context.Context, phase string, seconds float64) {
	if r == nil {
		return
	}
	h, err := r.histogram("phase_duration_seconds", "Wall-clock duration of one orchestration phase", "s")
	if err != nil {
		return
	}
	h.Record(ctx, seconds, metric.WithAttributes(attribute.String("phase", phase)))
}

// AnalyzerOutcome records analyzer_outcome_total{agent,status} for one
// completed (or failed, or timed-out) analyzer invocation.
func (r *Recorder) AnalyzerOutcome(ctx context.Context, agent, status string) {
	if r == nil {
		return
	}
	c, err := r.counter("analyzer_outcome_total", "Count of analyzer invocations by terminal status")
	if err != nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("agent", agent), attribute.String("status", status)))
}

// CheckpointDegraded records checkpoint_degraded_total when a checkpoint
// write falls back to the in-memory shadow because the durable store
// rejected or failed the write.
func (r *Recorder) CheckpointDegraded(ctx context.Context, checkpointID string) {
	if r == nil {
		return
	}
	c, err := r.counter("checkpoint_degraded_total", "Count of checkpoint writes that fell back to in-memory shadow state")
	if err != nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("checkpoint_id", checkpointID)))
}

// BatchResidual records batch_residual_total{attempt} each time a
// bounded-batch read leaves unprocessed keys behind for retry.
func (r *Recorder) BatchResidual(ctx context.Context, attempt int, residualCount int) {
	if r == nil {
		return
	}
	c, err := r.counter("batch_residual_total", "Count of unprocessed keys left behind by one batch read attempt")
	if err != nil {
		return
	}
	c.Add(ctx, int64(residualCount), metric.WithAttributes(attribute.Int("attempt", attempt)))
}

// OrchestrationUnavailable records orchestration_unavailable_total when
// a disruption request terminates early because every safety analyzer
// failed or timed out.
func (r *Recorder) OrchestrationUnavailable(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	c, err := r.counter("orchestration_unavailable_total", "Count of orchestration runs aborted as unavailable")
	if err != nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
