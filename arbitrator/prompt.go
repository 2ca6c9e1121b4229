package arbitrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/model"
	"github.com/airline-ops/recovery-orchestrator/retrieval"
)

// candidateSchema describes the structured shape the arbitrator model
// call returns: a small set of candidate recovery solutions, each
// self-reporting whether it violates any binding constraint so the
// deterministic filtering stage can reject it.
var candidateSchema = gateway.Schema{
	Name: "candidate_solutions",
	Description: "array \"candidates\": each with title, description, recommendations[], " +
		"safety_score/cost_score/passenger_score/network_score (0-100), confidence (0-1), " +
		"estimated_duration_minutes, pros[], cons[], risks[], violates_constraints[] " +
		"(binding constraint strings this candidate would violate, empty if none), and " +
		"steps[] (step_name, description, responsible_agent, dependencies (0-based indices " +
		"into steps preceding this one), estimated_duration_minutes, automation_possible, " +
		"action_type, success_criteria, rollback_procedure)",
}

// BuildEnvelope assembles the arbitrator's model prompt: the disruption,
// both phases' findings, the binding constraints every candidate must
// satisfy, and any retrieved reference passages.
func BuildEnvelope(disruption *model.Disruption, phase1, phase2 *model.Collation, binding []string, passages []retrieval.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disruption: %s\n\n", disruption.Text)

	if phase1 != nil {
		fmt.Fprintf(&b, "Phase 1 (initial analysis) findings:\n")
		writeCollation(&b, phase1)
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "Phase 2 (revision) findings:\n")
	writeCollation(&b, phase2)
	fmt.Fprintf(&b, "\n")

	if len(binding) > 0 {
		fmt.Fprintf(&b, "Binding safety constraints (every candidate solution must satisfy all of these):\n")
		for _, c := range binding {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(passages) > 0 {
		fmt.Fprintf(&b, "Reference passages:\n")
		for _, p := range passages {
			fmt.Fprintf(&b, "- (%s) %s\n", p.Source, p.Content)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "Task: propose 1 to 5 distinct candidate recovery solutions with a full recovery plan each.\n")
	return b.String()
}

func writeCollation(b *strings.Builder, c *model.Collation) {
	for _, agent := range model.AllAgents {
		r, ok := c.Responses[agent]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "- %s (%s, confidence %.2f): %s\n", agent, r.Status, r.Confidence, r.Recommendation)
		if len(r.BindingConstraints) > 0 {
			fmt.Fprintf(b, "  binding_constraints: %s\n", strings.Join(r.BindingConstraints, "; "))
		}
	}
}

// candidateStep mirrors one element of a candidate's steps[] array.
type candidateStep struct {
	StepName           string `json:"step_name"`
	Description        string `json:"description"`
	ResponsibleAgent    string `json:"responsible_agent"`
	Dependencies        []int  `json:"dependencies"`
	EstimatedDuration   float64 `json:"estimated_duration_minutes"`
	AutomationPossible  bool   `json:"automation_possible"`
	ActionType          string `json:"action_type"`
	SuccessCriteria     string `json:"success_criteria"`
	RollbackProcedure   string `json:"rollback_procedure"`
}

// candidate mirrors one element of the model's candidates[] array.
type candidate struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Recommendations     []string        `json:"recommendations"`
	SafetyScore         float64         `json:"safety_score"`
	CostScore           float64         `json:"cost_score"`
	PassengerScore      float64         `json:"passenger_score"`
	NetworkScore        float64         `json:"network_score"`
	Confidence          float64         `json:"confidence"`
	EstimatedDuration   float64         `json:"estimated_duration_minutes"`
	Pros                []string        `json:"pros"`
	Cons                []string        `json:"cons"`
	Risks               []string        `json:"risks"`
	ViolatesConstraints []string        `json:"violates_constraints"`
	Steps               []candidateStep `json:"steps"`
}

type candidateEnvelope struct {
	Candidates []candidate `json:"candidates"`
}

func parseCandidates(raw []byte) ([]candidate, error) {
	var env candidateEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse arbitrator model response: %w", err)
	}
	return env.Candidates, nil
}
