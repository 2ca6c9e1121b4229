// Package arbitrator implements the Arbitrator: it takes the
// Phase 1 and Phase 2 Collations, detects conflicts between safety and
// business analyzers, extracts the binding constraints every candidate
// solution must satisfy, asks the model for candidate recovery
// solutions, and deterministically filters, scores, ranks, and
// plan-validates them into the final ArbitratorOutput. Grounded on this
// codebase's orchestrator synthesizer stage (the step that turns many
// workers' outputs into one decision) generalized from free-text
// synthesis to a scored, ranked, schema-validated decision.
package arbitrator

import (
	"context"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/model"
	"github.com/airline-ops/recovery-orchestrator/retrieval"
)

// Deps bundles the Arbitrator's collaborators. Retrieval is optional;
// a nil value is replaced with retrieval.NoopClient.
type Deps struct {
	Gateway   gateway.ModelGateway
	Retrieval retrieval.Client
	Logger    core.Logger
}

// Arbitrator implements orchestrator.Arbitrator.
type Arbitrator struct {
	deps Deps
}

// New builds an Arbitrator.
func New(deps Deps) *Arbitrator {
	if deps.Retrieval == nil {
		deps.Retrieval = retrieval.NoopClient{}
	}
	if deps.Logger == nil {
		deps.Logger = core.NoopLogger{}
	}
	return &Arbitrator{deps: deps}
}

// Arbitrate produces the final ArbitratorOutput from the two Collations.
// phase1 may be nil (back-compat single-phase mode); phase2 must not be.
func (a *Arbitrator) Arbitrate(ctx context.Context, thread model.Thread, disruption *model.Disruption, phase1, phase2 *model.Collation) (*model.ArbitratorOutput, error) {
	start := time.Now()

	binding := unionBindingConstraints(phase2)
	conflicts, resolutions, overrides := DetectConflicts(phase2)

	passages, err := a.deps.Retrieval.Retrieve(ctx, disruption.Text)
	if err != nil {
		a.deps.Logger.Warn("retrieval call failed, proceeding without reference passages", map[string]interface{}{
			"thread": thread.String(), "error": err.Error(),
		})
		passages = nil
	}

	prompt := BuildEnvelope(disruption, phase1, phase2, binding, passages)
	raw, err := a.deps.Gateway.Complete(ctx, prompt, candidateSchema, gateway.TierHighCapacity)
	if err != nil {
		return nil, core.NewError("arbitrator.Arbitrate", core.KindInternal, "model call failed", err)
	}

	candidates, err := parseCandidates(raw.Raw)
	if err != nil {
		return nil, core.NewError("arbitrator.Arbitrate", core.KindInternal, "failed to parse candidate solutions", err)
	}

	solutions := buildSolutions(candidates, binding)
	solutions = paretoFilter(solutions)
	if len(solutions) == 0 {
		solutions = []model.RecoverySolution{conservativeFallback()}
	}
	rank(solutions)

	evolution := ComputeEvolution(phase1, phase2)

	output := &model.ArbitratorOutput{
		SolutionOptions:         solutions,
		RecommendedSolutionID:   solutions[0].SolutionID,
		ConflictsIdentified:     conflicts,
		ConflictResolutions:     resolutions,
		SafetyOverrides:         overrides,
		RecommendationEvolution: evolution,
		PhasesConsidered:        phasesConsidered(phase1, phase2),
		Reasoning:               "selected top-ranked composite score among Pareto-non-dominated, constraint-satisfying candidates",
		Confidence:              solutions[0].Confidence,
		Timestamp:               time.Now(),
		ModelUsed:               raw.ModelUsed,
		DurationSeconds:         time.Since(start).Seconds(),
	}
	output.PopulateBackCompat()

	return output, nil
}

func phasesConsidered(phase1, phase2 *model.Collation) []model.Phase {
	if phase1 == nil {
		return []model.Phase{phase2.Phase}
	}
	return []model.Phase{phase1.Phase, phase2.Phase}
}

func unionBindingConstraints(c *model.Collation) []string {
	if c == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, agent := range model.SafetyAgents {
		r, ok := c.Responses[agent]
		if !ok {
			continue
		}
		for _, bc := range r.BindingConstraints {
			if !seen[bc] {
				seen[bc] = true
				out = append(out, bc)
			}
		}
	}
	return out
}

func conservativeFallback() model.RecoverySolution {
	return model.RecoverySolution{
		SolutionID:      1,
		Title:           "Manual review required",
		Description:     "No candidate recovery solution satisfied every binding safety constraint; routing to manual review.",
		Recommendations: []string{"escalate to duty manager for manual review"},
		SafetyScore:     100,
		CostScore:       0,
		PassengerScore:  0,
		NetworkScore:    0,
		CompositeScore:  model.ComputeComposite(100, 0, 0, 0),
		Confidence:      0,
		RecoveryPlan: &model.RecoveryPlan{
			Steps: []model.RecoveryStep{{
				StepNumber:        1,
				StepName:          "manual_review",
				Description:       "Escalate to a human duty manager for manual disposition.",
				ResponsibleAgent:  model.AgentCrewCompliance,
				EstimatedDuration: 0,
				ActionType:        "escalation",
				SuccessCriteria:   "duty manager has made a disposition decision",
			}},
			CriticalPath: []int{1},
		},
	}
}
