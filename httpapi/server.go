// Package httpapi exposes the orchestrator over HTTP: invoke a
// disruption, check a thread's status, and record a human's solution
// selection. Modeled on this codebase's own tool/agent HTTP surface — a
// plain net/http.ServeMux with hand-registered JSON handlers and a CORS
// wrapper — rather than a router framework, since that is the only HTTP
// server pattern with a real implementation anywhere in the pack.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/decision"
	"github.com/airline-ops/recovery-orchestrator/model"
	"github.com/airline-ops/recovery-orchestrator/orchestrator"
)

// Orchestrator is the Phase 1-3 pipeline entrypoint the invoke handler
// calls into; *orchestrator.Orchestrator satisfies it.
type Orchestrator interface {
	HandleDisruption(ctx context.Context, rawText, continuationID string) (*orchestrator.Result, error)
}

// StatusSource reports the furthest checkpoint reached by a thread, for
// the status endpoint.
type StatusSource interface {
	LatestCheckpoint(ctx context.Context, thread model.Thread) (*model.Checkpoint, bool, error)
}

// Server wires the orchestrator, decision sink, and checkpoint-backed
// status source behind a small JSON HTTP API.
type Server struct {
	orchestrator Orchestrator
	decisions    *decision.Sink
	status       StatusSource
	logger       core.Logger
	corsOrigins  []string
	mux          *http.ServeMux
}

// New builds a Server and registers its routes.
func New(orch Orchestrator, decisions *decision.Sink, status StatusSource, logger core.Logger, corsOrigins []string) *Server {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	s := &Server{
		orchestrator: orch,
		decisions:    decisions,
		status:       status,
		logger:       logger,
		corsOrigins:  corsOrigins,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/invoke", s.handleInvoke)
	s.mux.HandleFunc("/api/v1/status/", s.handleStatus)
	s.mux.HandleFunc("/api/v1/select_solution", s.handleSelectSolution)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// ServeHTTP lets Server be passed directly to http.ListenAndServe, with
// CORS applied around every route.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}

// NewHTTPServer wraps Server in an *http.Server using the given address
// and timeouts, matching the teacher's Start() configuration shape.
func NewHTTPServer(addr string, readTimeout, writeTimeout time.Duration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// response is already partially written; nothing more to do but
		// let the client observe a truncated body.
		return
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	kind := core.KindOf(err)
	s.logger.Error("request failed", map[string]interface{}{"op": op, "kind": string(kind), "error": err.Error()})
	writeJSON(w, statusForKind(kind), map[string]string{"error": err.Error(), "kind": string(kind)})
}

func statusForKind(kind core.Kind) int {
	switch kind {
	case core.KindInvalidRequest:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindTimeout:
		return http.StatusGatewayTimeout
	case core.KindUnavailable:
		return http.StatusServiceUnavailable
	case core.KindPartialSuccess:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}
