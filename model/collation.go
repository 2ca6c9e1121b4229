package model

import "time"

// Collation is the immutable set of AnalyzerResponses produced by one
// phase: at most one response per agent name.
type Collation struct {
	Phase         Phase                          `json:"phase"`
	Timestamp     time.Time                      `json:"timestamp"`
	Responses     map[AgentName]*AnalyzerResponse `json:"responses"`
	TotalDuration float64                         `json:"total_duration_seconds"`
}

// NewCollation assembles a Collation from a set of responses, rejecting
// duplicate agent names by keeping the first seen (callers should not
// pass duplicates; the orchestrator only invokes each agent once per
// phase).
func NewCollation(phase Phase, responses []*AnalyzerResponse) *Collation {
	c := &Collation{
		Phase:     phase,
		Timestamp: time.Now(),
		Responses: make(map[AgentName]*AnalyzerResponse, len(responses)),
	}
	for _, r := range responses {
		if _, exists := c.Responses[r.AgentName]; exists {
			continue
		}
		c.Responses[r.AgentName] = r
		c.TotalDuration += r.DurationSeconds
	}
	return c
}

// SafetyAllFailed reports whether all three safety-tier analyzers are
// present in the collation with a non-success status; a missing safety
// analyzer makes it false (used by the orchestrator's
// all_safety_unavailable failure policy).
func (c *Collation) SafetyAllFailed() bool {
	for _, agent := range SafetyAgents {
		r, ok := c.Responses[agent]
		if !ok || r.Status == StatusSuccess {
			return false
		}
	}
	return true
}

// BindingConstraints returns each safety analyzer's binding constraints
// keyed by agent name; safety analyzers with none are omitted.
func (c *Collation) BindingConstraints() map[AgentName][]string {
	out := make(map[AgentName][]string)
	for _, agent := range SafetyAgents {
		if r, ok := c.Responses[agent]; ok && len(r.BindingConstraints) > 0 {
			out[agent] = r.BindingConstraints
		}
	}
	return out
}

// MissingAgents returns the agent names absent from the collation or
// present with a non-success status.
func (c *Collation) MissingAgents() []AgentName {
	var missing []AgentName
	for _, agent := range AllAgents {
		r, ok := c.Responses[agent]
		if !ok || r.Status != StatusSuccess {
			missing = append(missing, agent)
		}
	}
	return missing
}
