package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/airline-ops/recovery-orchestrator/model"
)

// BuildEnvelope constructs the prompt sent to the model for one
// analyzer call. Phase 1 envelopes carry just the disruption and the
// initial_analysis task tag; Phase 2 envelopes additionally carry the
// full Phase 1 Collation grouped by analyzer, per the
// augmentation protocol.
func BuildEnvelope(domain string, req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\n", domain)
	fmt.Fprintf(&b, "Disruption: %s\n", req.Disruption.Text)

	if req.Phase == model.PhaseInitial {
		fmt.Fprintf(&b, "Task: initial_analysis\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Task: revision\n")
	fmt.Fprintf(&b, "Phase 1 findings by analyzer:\n")
	if req.Phase1 != nil {
		for _, agent := range model.AllAgents {
			r, ok := req.Phase1.Responses[agent]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", agent, r.Status, r.Recommendation)
			if len(r.BindingConstraints) > 0 {
				fmt.Fprintf(&b, "  binding_constraints: %s\n", strings.Join(r.BindingConstraints, "; "))
			}
		}
	}
	return b.String()
}

// responseSchema is the structured shape every analyzer model call
// expects back.
type responseSchema struct {
	Recommendation     string   `json:"recommendation"`
	Reasoning          string   `json:"reasoning"`
	Confidence         float64  `json:"confidence"`
	BindingConstraints []string `json:"binding_constraints,omitempty"`
}

func parseModelResponse(raw []byte) (*responseSchema, error) {
	var out responseSchema
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse analyzer model response: %w", err)
	}
	return &out, nil
}
