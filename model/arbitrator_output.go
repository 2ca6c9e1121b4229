package model

import (
	"fmt"
	"time"
)

// ArbitratorOutput is the final output of one orchestration run.
type ArbitratorOutput struct {
	SolutionOptions       []RecoverySolution        `json:"solution_options"`
	RecommendedSolutionID int                        `json:"recommended_solution_id"`

	ConflictsIdentified []ConflictDetail    `json:"conflicts_identified,omitempty"`
	ConflictResolutions []ResolutionDetail  `json:"conflict_resolutions,omitempty"`
	SafetyOverrides     []SafetyOverride    `json:"safety_overrides,omitempty"`

	RecommendationEvolution *RecommendationEvolution `json:"recommendation_evolution,omitempty"`

	PhasesConsidered []Phase `json:"phases_considered"`

	// Back-compat fields, always populated from the recommended solution.
	FinalDecision   string   `json:"final_decision"`
	Recommendations []string `json:"recommendations"`

	Justification string  `json:"justification"`
	Reasoning     string  `json:"reasoning"`
	Confidence    float64 `json:"confidence"`

	Timestamp       time.Time `json:"timestamp"`
	ModelUsed       string    `json:"model_used,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// Recommended returns the solution whose SolutionID matches
// RecommendedSolutionID, or nil if none match.
func (o *ArbitratorOutput) Recommended() *RecoverySolution {
	for i := range o.SolutionOptions {
		if o.SolutionOptions[i].SolutionID == o.RecommendedSolutionID {
			return &o.SolutionOptions[i]
		}
	}
	return nil
}

// PopulateBackCompat sets FinalDecision/Recommendations from the
// recommended solution, per the backward-compat invariant.
func (o *ArbitratorOutput) PopulateBackCompat() {
	rec := o.Recommended()
	if rec == nil {
		return
	}
	o.FinalDecision = rec.Description
	o.Recommendations = rec.Recommendations
}

// Validate enforces P2 (solution count), P3 (ranking), P8 (back-compat)
// and per-solution validity (P4, P7).
func (o *ArbitratorOutput) Validate() []string {
	var v []string

	if len(o.SolutionOptions) < 1 || len(o.SolutionOptions) > 3 {
		v = append(v, fmt.Sprintf("solution_options has %d entries, expected 1..3", len(o.SolutionOptions)))
	}

	for i := range o.SolutionOptions {
		v = append(v, o.SolutionOptions[i].Validate()...)
	}

	for i := 1; i < len(o.SolutionOptions); i++ {
		prev, cur := o.SolutionOptions[i-1], o.SolutionOptions[i]
		if cur.CompositeScore > prev.CompositeScore {
			v = append(v, fmt.Sprintf("solution_options not sorted: index %d composite %v > index %d composite %v", i, cur.CompositeScore, i-1, prev.CompositeScore))
		} else if cur.CompositeScore == prev.CompositeScore && cur.SafetyScore > prev.SafetyScore {
			v = append(v, fmt.Sprintf("tie-break violated at index %d: safety_score %v > preceding %v", i, cur.SafetyScore, prev.SafetyScore))
		}
	}

	rec := o.Recommended()
	if rec == nil {
		v = append(v, fmt.Sprintf("recommended_solution_id %d not present among solution_options", o.RecommendedSolutionID))
	} else {
		if o.FinalDecision != rec.Description {
			v = append(v, "final_decision does not match recommended solution's description")
		}
	}

	return v
}
