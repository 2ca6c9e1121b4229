package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/decision"
	"github.com/airline-ops/recovery-orchestrator/model"
)

type invokeRequest struct {
	DisruptionText string `json:"disruption_text"`
	ContinuationID string `json:"continuation_id,omitempty"`
}

type invokeResponse struct {
	ThreadID string                 `json:"thread_id"`
	Output   *model.ArbitratorOutput `json:"output"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "httpapi.handleInvoke", core.NewError("httpapi.handleInvoke", core.KindInvalidRequest, "malformed request body", err))
		return
	}

	result, err := s.orchestrator.HandleDisruption(r.Context(), req.DisruptionText, req.ContinuationID)
	if err != nil {
		s.writeError(w, "httpapi.handleInvoke", err)
		return
	}

	writeJSON(w, http.StatusOK, invokeResponse{ThreadID: result.Thread.String(), Output: result.Output})
}

type statusResponse struct {
	ThreadID        string `json:"thread_id"`
	FurthestPhase   string `json:"furthest_checkpoint"`
	PhaseComplete   bool   `json:"phase3_complete"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	threadID := strings.TrimPrefix(r.URL.Path, "/api/v1/status/")
	if threadID == "" {
		s.writeError(w, "httpapi.handleStatus", core.NewError("httpapi.handleStatus", core.KindInvalidRequest, "thread id required in path", core.ErrInvalidRequest))
		return
	}

	cp, found, err := s.status.LatestCheckpoint(r.Context(), model.Thread(threadID))
	if err != nil {
		s.writeError(w, "httpapi.handleStatus", core.NewError("httpapi.handleStatus", core.KindInternal, "failed to load checkpoint", err))
		return
	}
	if !found {
		s.writeError(w, "httpapi.handleStatus", core.NewError("httpapi.handleStatus", core.KindNotFound, "no checkpoints found for thread", core.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ThreadID:      threadID,
		FurthestPhase: string(cp.CheckpointID),
		PhaseComplete: cp.CheckpointID == model.CheckpointPhase3Complete ||
			(cp.CheckpointID == model.CheckpointEnd && cp.Metadata["reason"] == ""),
	})
}

type selectSolutionRequest struct {
	DisruptionID       string `json:"disruption_id"`
	SelectedSolutionID int    `json:"selected_solution_id"`
	Rationale          string `json:"rationale,omitempty"`
}

func (s *Server) handleSelectSolution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "httpapi.handleSelectSolution", core.NewError("httpapi.handleSelectSolution", core.KindInvalidRequest, "malformed request body", err))
		return
	}

	result, err := s.decisions.RecordSelection(r.Context(), req.DisruptionID, req.SelectedSolutionID, req.Rationale)
	if err != nil {
		s.writeError(w, "httpapi.handleSelectSolution", err)
		return
	}

	status := http.StatusOK
	if result.Status != decision.StatusSuccess {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}
