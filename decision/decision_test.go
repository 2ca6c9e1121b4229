package decision

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// memoryBucket is an in-memory BucketWriter test double; fail forces
// every Put to fail for a given bucket to exercise partial-failure paths.
type memoryBucket struct {
	mu      sync.Mutex
	name    string
	fail    bool
	objects map[string][]byte
}

func newMemoryBucket(name string, fail bool) *memoryBucket {
	return &memoryBucket{name: name, fail: fail, objects: make(map[string][]byte)}
}

func (b *memoryBucket) Name() string { return b.name }

func (b *memoryBucket) Put(ctx context.Context, key string, data []byte, tags map[string]string) error {
	if b.fail {
		return errors.New("simulated bucket outage")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

type stubSource struct {
	output    *model.ArbitratorOutput
	responses []model.AnalyzerResponse
	err       error
}

func (s *stubSource) Load(ctx context.Context, disruptionID string) (*model.ArbitratorOutput, []model.AnalyzerResponse, error) {
	return s.output, s.responses, s.err
}

func sampleOutput() *model.ArbitratorOutput {
	return &model.ArbitratorOutput{
		SolutionOptions: []model.RecoverySolution{
			{SolutionID: 1, Title: "Delay and rebook", Description: "Delay 45m", CompositeScore: 75, SafetyScore: 90, CostScore: 70, PassengerScore: 60, NetworkScore: 65, Confidence: 0.8, RecoveryPlan: &model.RecoveryPlan{Steps: []model.RecoveryStep{{StepNumber: 1, EstimatedDuration: 10}}}},
			{SolutionID: 2, Title: "Cancel flight", Description: "Cancel outright", CompositeScore: 62, SafetyScore: 95, CostScore: 40, PassengerScore: 30, NetworkScore: 50, Confidence: 0.6, RecoveryPlan: &model.RecoveryPlan{Steps: []model.RecoveryStep{{StepNumber: 1, EstimatedDuration: 5}}}},
		},
		RecommendedSolutionID: 1,
	}
}

func TestSink_RecordSelection_SingleBucketSuccess(t *testing.T) {
	bucket := newMemoryBucket("decisions-primary", false)
	source := &stubSource{output: sampleOutput()}
	sink := New(source, []BucketWriter{bucket}, core.NoopLogger{})

	result, err := sink.RecordSelection(context.Background(), "disruption-123", 1, "matches recommendation")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "ok", result.PerBucket["decisions-primary"])
	assert.False(t, result.Record.HumanOverride)
	assert.Len(t, bucket.objects, 1)
}

func TestSink_RecordSelection_HumanOverrideDetected(t *testing.T) {
	bucket := newMemoryBucket("decisions-primary", false)
	source := &stubSource{output: sampleOutput()}
	sink := New(source, []BucketWriter{bucket}, core.NoopLogger{})

	result, err := sink.RecordSelection(context.Background(), "disruption-123", 2, "ops manager overrode for cost reasons")
	require.NoError(t, err)
	assert.True(t, result.Record.HumanOverride)
	assert.Equal(t, 2, result.Record.SelectedSolutionID)
	assert.Equal(t, 1, result.Record.RecommendedSolutionID)
}

func TestSink_RecordSelection_PartialFailureAcrossBuckets(t *testing.T) {
	healthy := newMemoryBucket("decisions-primary", false)
	broken := newMemoryBucket("decisions-replica", true)
	source := &stubSource{output: sampleOutput()}
	sink := New(source, []BucketWriter{healthy, broken}, core.NoopLogger{})

	result, err := sink.RecordSelection(context.Background(), "disruption-123", 1, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPartialSuccess, result.Status)
	assert.Equal(t, "ok", result.PerBucket["decisions-primary"])
	assert.Equal(t, "failed", result.PerBucket["decisions-replica"])
}

func TestSink_RecordSelection_NotFoundWhenNoOutputStored(t *testing.T) {
	source := &stubSource{output: nil}
	sink := New(source, []BucketWriter{newMemoryBucket("decisions-primary", false)}, core.NoopLogger{})

	_, err := sink.RecordSelection(context.Background(), "unknown-disruption", 1, "")
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestSink_RecordSelection_InvalidSelectedSolutionID(t *testing.T) {
	source := &stubSource{output: sampleOutput()}
	sink := New(source, []BucketWriter{newMemoryBucket("decisions-primary", false)}, core.NoopLogger{})

	_, err := sink.RecordSelection(context.Background(), "disruption-123", 99, "")
	require.Error(t, err)
	assert.Equal(t, core.KindInvalidRequest, core.KindOf(err))
}
