package httpapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// CheckpointStatusSource implements StatusSource directly against a
// checkpoint.Store, returning whatever checkpoint is most recent for the
// thread.
type CheckpointStatusSource struct {
	Store checkpoint.Store
}

func (c CheckpointStatusSource) LatestCheckpoint(ctx context.Context, thread model.Thread) (*model.Checkpoint, bool, error) {
	return c.Store.Load(ctx, thread, "")
}

// CheckpointOutputSource implements decision.OutputSource by treating a
// decision's disruption id as the orchestration thread id: it loads the
// Phase 3 checkpoint for the ArbitratorOutput and the Phase 2 checkpoint
// for the AnalyzerResponses that informed it.
type CheckpointOutputSource struct {
	Store checkpoint.Store
}

func (c CheckpointOutputSource) Load(ctx context.Context, disruptionID string) (*model.ArbitratorOutput, []model.AnalyzerResponse, error) {
	thread := model.Thread(disruptionID)

	outputCP, ok, err := c.Store.Load(ctx, thread, model.CheckpointPhase3Complete)
	if err != nil {
		return nil, nil, fmt.Errorf("load phase3 checkpoint for thread %s: %w", disruptionID, err)
	}
	if !ok {
		return nil, nil, nil
	}
	var output model.ArbitratorOutput
	if err := unmarshalCheckpoint(outputCP, &output); err != nil {
		return nil, nil, err
	}

	var responses []model.AnalyzerResponse
	if phase2CP, ok, err := c.Store.Load(ctx, thread, model.CheckpointPhase2Complete); err == nil && ok {
		var collation model.Collation
		if err := unmarshalCheckpoint(phase2CP, &collation); err == nil {
			responses = make([]model.AnalyzerResponse, 0, len(collation.Responses))
			for _, r := range collation.Responses {
				responses = append(responses, *r)
			}
		}
	}

	return &output, responses, nil
}

func unmarshalCheckpoint(cp *model.Checkpoint, out interface{}) error {
	if cp.IsOffloaded() {
		return fmt.Errorf("checkpoint %s is off-loaded to %s; decision sink requires an inline checkpoint", cp.CheckpointID, cp.StateRef)
	}
	if err := json.Unmarshal(cp.State, out); err != nil {
		return fmt.Errorf("unmarshal checkpoint %s state: %w", cp.CheckpointID, err)
	}
	return nil
}
