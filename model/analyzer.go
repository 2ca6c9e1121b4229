package model

import "fmt"

// AgentName is one of the seven fixed domain analyzer identities.
type AgentName string

const (
	AgentCrewCompliance  AgentName = "crew_compliance"
	AgentMaintenance     AgentName = "maintenance"
	AgentRegulatory      AgentName = "regulatory"
	AgentNetwork         AgentName = "network"
	AgentGuestExperience AgentName = "guest_experience"
	AgentCargo           AgentName = "cargo"
	AgentFinance         AgentName = "finance"
)

// SafetyAgents lists the three safety-tier analyzers; their
// binding_constraints are treated as non-negotiable by the arbitrator.
var SafetyAgents = []AgentName{AgentCrewCompliance, AgentMaintenance, AgentRegulatory}

// BusinessAgents lists the four business-tier analyzers.
var BusinessAgents = []AgentName{AgentNetwork, AgentGuestExperience, AgentCargo, AgentFinance}

// AllAgents lists all seven domain analyzers in a stable order.
var AllAgents = append(append([]AgentName{}, SafetyAgents...), BusinessAgents...)

// IsSafety reports whether name is one of the three safety-tier analyzers.
func (n AgentName) IsSafety() bool {
	for _, a := range SafetyAgents {
		if a == n {
			return true
		}
	}
	return false
}

// IsValid reports whether name is one of the seven fixed agent names.
func (n AgentName) IsValid() bool {
	for _, a := range AllAgents {
		if a == n {
			return true
		}
	}
	return false
}

// Phase identifies which pass of the pipeline produced a response.
type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhaseRevision Phase = "revision"
)

// Status is the outcome of one analyzer invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// AnalyzerResponse is produced by one analyzer in one phase.
type AnalyzerResponse struct {
	AgentName          AgentName `json:"agent_name"`
	Phase              Phase     `json:"phase"`
	Status             Status    `json:"status"`
	Recommendation     string    `json:"recommendation"`
	Confidence         float64   `json:"confidence"`
	BindingConstraints []string  `json:"binding_constraints,omitempty"`
	Reasoning          string    `json:"reasoning"`
	DurationSeconds    float64   `json:"duration_seconds"`
}

// Validate enforces the AnalyzerResponse invariants from the data model:
// confidence range, zero confidence on non-success, and binding
// constraints restricted to safety analyzers.
func (r *AnalyzerResponse) Validate() []string {
	var v []string
	if !r.AgentName.IsValid() {
		v = append(v, fmt.Sprintf("unknown agent_name %q", r.AgentName))
	}
	if r.Phase != PhaseInitial && r.Phase != PhaseRevision {
		v = append(v, fmt.Sprintf("invalid phase %q", r.Phase))
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		v = append(v, fmt.Sprintf("confidence %v outside [0,1]", r.Confidence))
	}
	if r.Status != StatusSuccess && r.Confidence != 0 {
		v = append(v, "confidence must be 0 when status is not success")
	}
	if len(r.BindingConstraints) > 0 && !r.AgentName.IsSafety() {
		v = append(v, fmt.Sprintf("agent %q is not a safety analyzer but emitted binding constraints", r.AgentName))
	}
	if r.DurationSeconds < 0 {
		v = append(v, "duration_seconds must be non-negative")
	}
	return v
}

// NewFailureResponse builds a timeout/error response with zero confidence
// and empty recommendation, as produced by the per-agent supervisor.
func NewFailureResponse(agent AgentName, phase Phase, status Status, duration float64, reason string) *AnalyzerResponse {
	return &AnalyzerResponse{
		AgentName:       agent,
		Phase:           phase,
		Status:          status,
		Recommendation:  "",
		Confidence:      0,
		Reasoning:       reason,
		DurationSeconds: duration,
	}
}
