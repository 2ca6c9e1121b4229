package model

import "fmt"

// ConflictType classifies how two (or more) analyzer positions clash.
type ConflictType string

const (
	ConflictSafetyVsBusiness   ConflictType = "safety_vs_business"
	ConflictSafetyVsSafety     ConflictType = "safety_vs_safety"
	ConflictBusinessVsBusiness ConflictType = "business_vs_business"
)

// ConflictDetail records one detected conflict between analyzer positions.
type ConflictDetail struct {
	AgentsInvolved []AgentName  `json:"agents_involved"`
	ConflictType   ConflictType `json:"conflict_type"`
	Description    string       `json:"description"`
}

// Validate enforces that a conflict names at least two agents.
func (c *ConflictDetail) Validate() []string {
	var v []string
	if len(c.AgentsInvolved) < 2 {
		v = append(v, fmt.Sprintf("conflict requires >=2 agents_involved, got %d", len(c.AgentsInvolved)))
	}
	switch c.ConflictType {
	case ConflictSafetyVsBusiness, ConflictSafetyVsSafety, ConflictBusinessVsBusiness:
	default:
		v = append(v, fmt.Sprintf("invalid conflict_type %q", c.ConflictType))
	}
	return v
}

// ResolutionDetail records how a ConflictDetail was resolved.
type ResolutionDetail struct {
	ConflictType ConflictType `json:"conflict_type"`
	Resolution   string       `json:"resolution"`
	FavoredAgent AgentName    `json:"favored_agent,omitempty"`
}

// SafetyOverride records a binding safety constraint that overrode a
// business recommendation.
type SafetyOverride struct {
	Agent           AgentName `json:"agent"`
	Constraint      string    `json:"constraint"`
	OverriddenAgent AgentName `json:"overridden_agent"`
	Description     string    `json:"description"`
}

// AgentEvolution classifies how one agent's position changed between
// Phase 1 and Phase 2.
type AgentEvolution string

const (
	EvolutionUnchanged     AgentEvolution = "unchanged"
	EvolutionConverged     AgentEvolution = "converged"
	EvolutionDiverged      AgentEvolution = "diverged"
	EvolutionNewInPhase2   AgentEvolution = "new_in_phase2"
	EvolutionDroppedPhase2 AgentEvolution = "dropped_in_phase2"
)

// RecommendationEvolution aggregates per-agent change classification
// across the two phases.
type RecommendationEvolution struct {
	PerAgent             map[AgentName]AgentEvolution `json:"per_agent"`
	ChangedCount         int                           `json:"changed_count"`
	UnchangedCount       int                           `json:"unchanged_count"`
	ConvergenceDetected  bool                          `json:"convergence_detected"`
	DivergenceDetected   bool                          `json:"divergence_detected"`
	RemovedConstraints   map[AgentName][]string        `json:"removed_constraints,omitempty"`
	NewConstraints       map[AgentName][]string         `json:"new_constraints,omitempty"`
}
