package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/decision"
	"github.com/airline-ops/recovery-orchestrator/model"
	"github.com/airline-ops/recovery-orchestrator/orchestrator"
)

type stubOrchestrator struct {
	result *orchestrator.Result
	err    error
}

func (s stubOrchestrator) HandleDisruption(ctx context.Context, rawText, continuationID string) (*orchestrator.Result, error) {
	return s.result, s.err
}

func sampleArbitratorOutput() *model.ArbitratorOutput {
	return &model.ArbitratorOutput{
		SolutionOptions: []model.RecoverySolution{
			{SolutionID: 1, Title: "Delay and rebook", Description: "Delay 45m", CompositeScore: 75,
				RecoveryPlan: &model.RecoveryPlan{Steps: []model.RecoveryStep{{StepNumber: 1, EstimatedDuration: 10}}}},
		},
		RecommendedSolutionID: 1,
		PhasesConsidered:      []model.Phase{model.PhaseInitial, model.PhaseRevision},
	}
}

func TestHandleInvoke_HappyPath(t *testing.T) {
	thread := model.NewThread()
	stub := stubOrchestrator{result: &orchestrator.Result{Thread: thread, Output: sampleArbitratorOutput()}}
	store := checkpoint.NewMemoryStore()
	sink := decision.New(CheckpointOutputSource{Store: store}, nil, core.NoopLogger{})
	srv := New(stub, sink, CheckpointStatusSource{Store: store}, core.NoopLogger{}, []string{"*"})

	body, _ := json.Marshal(invokeRequest{DisruptionText: "flight AB123 diverted due to weather"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoke", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp invokeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, thread.String(), resp.ThreadID)
	assert.Equal(t, 1, resp.Output.RecommendedSolutionID)
}

func TestHandleInvoke_UnavailableMapsTo503(t *testing.T) {
	stub := stubOrchestrator{err: core.NewError("orchestrator.HandleDisruption", core.KindUnavailable, "all safety analyzers unavailable", core.ErrUnavailable)}
	store := checkpoint.NewMemoryStore()
	sink := decision.New(CheckpointOutputSource{Store: store}, nil, core.NoopLogger{})
	srv := New(stub, sink, CheckpointStatusSource{Store: store}, core.NoopLogger{}, []string{"*"})

	body, _ := json.Marshal(invokeRequest{DisruptionText: "flight AB123 diverted due to weather"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoke", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStatus_NotFoundWhenThreadUnknown(t *testing.T) {
	stub := stubOrchestrator{}
	store := checkpoint.NewMemoryStore()
	sink := decision.New(CheckpointOutputSource{Store: store}, nil, core.NoopLogger{})
	srv := New(stub, sink, CheckpointStatusSource{Store: store}, core.NoopLogger{}, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/unknown-thread", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStatus_ReturnsFurthestCheckpoint(t *testing.T) {
	stub := stubOrchestrator{}
	store := checkpoint.NewMemoryStore()
	thread := model.NewThread()
	_, err := store.Save(context.Background(), thread, model.CheckpointPhase1Complete, model.NewCollation(model.PhaseInitial, nil), nil)
	require.NoError(t, err)

	sink := decision.New(CheckpointOutputSource{Store: store}, nil, core.NoopLogger{})
	srv := New(stub, sink, CheckpointStatusSource{Store: store}, core.NoopLogger{}, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/"+thread.String(), nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.CheckpointPhase1Complete), resp.FurthestPhase)
}

func TestHandleSelectSolution_RecordsAgainstStoredOutput(t *testing.T) {
	stub := stubOrchestrator{}
	store := checkpoint.NewMemoryStore()
	thread := model.NewThread()
	output := sampleArbitratorOutput()
	_, err := store.Save(context.Background(), thread, model.CheckpointPhase3Complete, output, nil)
	require.NoError(t, err)

	sink := decision.New(CheckpointOutputSource{Store: store}, nil, core.NoopLogger{})
	srv := New(stub, sink, CheckpointStatusSource{Store: store}, core.NoopLogger{}, []string{"*"})

	body, _ := json.Marshal(selectSolutionRequest{DisruptionID: thread.String(), SelectedSolutionID: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/select_solution", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
