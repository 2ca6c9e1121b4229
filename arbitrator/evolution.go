package arbitrator

import "github.com/airline-ops/recovery-orchestrator/model"

// ComputeEvolution classifies, per agent, how its position changed
// between phase1 and phase2, and aggregates convergence/
// divergence signals across agents. Returns nil when phase1 is absent (single-phase
// back-compat mode has nothing to compare against).
func ComputeEvolution(phase1, phase2 *model.Collation) *model.RecommendationEvolution {
	if phase1 == nil {
		return nil
	}

	evo := &model.RecommendationEvolution{
		PerAgent:           make(map[model.AgentName]model.AgentEvolution),
		RemovedConstraints: make(map[model.AgentName][]string),
		NewConstraints:     make(map[model.AgentName][]string),
	}

	for _, agent := range model.AllAgents {
		r1, in1 := phase1.Responses[agent]
		r2, in2 := phase2.Responses[agent]

		switch {
		case !in1 && in2:
			evo.PerAgent[agent] = model.EvolutionNewInPhase2
		case in1 && !in2:
			evo.PerAgent[agent] = model.EvolutionDroppedPhase2
		case in1 && in2:
			evo.PerAgent[agent] = classify(r1, r2)
		default:
			continue
		}

		if in1 && agent.IsSafety() {
			removed := setDifference(r1.BindingConstraints, constraintsOrEmpty(r2))
			if len(removed) > 0 {
				evo.RemovedConstraints[agent] = removed
			}
		}
		if in2 && agent.IsSafety() {
			added := setDifference(r2.BindingConstraints, constraintsOrEmpty(r1))
			if len(added) > 0 {
				evo.NewConstraints[agent] = added
			}
		}
	}

	for _, e := range evo.PerAgent {
		switch e {
		case model.EvolutionUnchanged:
			evo.UnchangedCount++
		default:
			evo.ChangedCount++
		}
		if e == model.EvolutionConverged {
			evo.ConvergenceDetected = true
		}
		if e == model.EvolutionDiverged {
			evo.DivergenceDetected = true
		}
	}

	return evo
}

func constraintsOrEmpty(r *model.AnalyzerResponse) []string {
	if r == nil {
		return nil
	}
	return r.BindingConstraints
}

func setDifference(a, b []string) []string {
	bSet := make(map[string]bool, len(b))
	for _, v := range b {
		bSet[v] = true
	}
	var out []string
	for _, v := range a {
		if !bSet[v] {
			out = append(out, v)
		}
	}
	return out
}

// classify compares one agent's phase 1 and phase 2 responses:
// unchanged when the recommendation text is identical, converged when
// confidence rose, diverged when confidence fell, unchanged otherwise.
func classify(r1, r2 *model.AnalyzerResponse) model.AgentEvolution {
	if r1.Recommendation == r2.Recommendation {
		return model.EvolutionUnchanged
	}
	if r2.Confidence > r1.Confidence {
		return model.EvolutionConverged
	}
	if r2.Confidence < r1.Confidence {
		return model.EvolutionDiverged
	}
	return model.EvolutionUnchanged
}
