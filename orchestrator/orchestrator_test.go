package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airline-ops/recovery-orchestrator/analyzer"
	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/model"
)

type stubAnalyzer struct {
	name       model.AgentName
	fail       bool
	failPhases map[model.Phase]bool
}

func (s *stubAnalyzer) Name() model.AgentName { return s.name }

func (s *stubAnalyzer) Analyze(_ context.Context, req analyzer.Request) (*model.AnalyzerResponse, error) {
	if s.fail || s.failPhases[req.Phase] {
		return nil, assertErr
	}
	resp := &model.AnalyzerResponse{
		AgentName:      s.name,
		Phase:          req.Phase,
		Status:         model.StatusSuccess,
		Recommendation: "proceed",
		Confidence:     0.7,
	}
	if s.name.IsSafety() {
		resp.BindingConstraints = []string{string(s.name) + " constraint"}
	}
	return resp, nil
}

var assertErr = &stubError{"analyzer failed"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }

type fakeArbitrator struct {
	calledPhase1, calledPhase2 *model.Collation
	output                     *model.ArbitratorOutput
}

func (f *fakeArbitrator) Arbitrate(_ context.Context, _ model.Thread, _ *model.Disruption, phase1, phase2 *model.Collation) (*model.ArbitratorOutput, error) {
	f.calledPhase1, f.calledPhase2 = phase1, phase2
	return f.output, nil
}

func allHealthyAnalyzers() []analyzer.Analyzer {
	var out []analyzer.Analyzer
	for _, a := range model.AllAgents {
		out = append(out, &stubAnalyzer{name: a})
	}
	return out
}

func sampleOutput() *model.ArbitratorOutput {
	return &model.ArbitratorOutput{
		SolutionOptions: []model.RecoverySolution{{
			SolutionID: 1, Title: "t", Description: "d", Recommendations: []string{"r"},
			SafetyScore: 90, CostScore: 80, PassengerScore: 80, NetworkScore: 80,
			CompositeScore: model.ComputeComposite(90, 80, 80, 80),
			RecoveryPlan: &model.RecoveryPlan{Steps: []model.RecoveryStep{{StepNumber: 1, StepName: "s", ResponsibleAgent: model.AgentNetwork}}},
		}},
		RecommendedSolutionID: 1,
		PhasesConsidered:      []model.Phase{model.PhaseInitial, model.PhaseRevision},
		FinalDecision:         "d",
	}
}

func TestOrchestrator_HandleDisruption_HappyPath(t *testing.T) {
	arb := &fakeArbitrator{output: sampleOutput()}
	o := New(Deps{
		Analyzers:  allHealthyAnalyzers(),
		Checkpoint: checkpoint.NewMemoryStore(),
		Arbitrator: arb,
		Logger:     core.NoopLogger{},
	})

	result, err := o.HandleDisruption(context.Background(), "flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Thread)
	assert.Equal(t, sampleOutput().FinalDecision, result.Output.FinalDecision)

	require.NotNil(t, arb.calledPhase1)
	require.NotNil(t, arb.calledPhase2)
	assert.Len(t, arb.calledPhase1.Responses, len(model.AllAgents))
	assert.Len(t, arb.calledPhase2.Responses, len(model.AllAgents))
}

func TestOrchestrator_AllSafetyUnavailable(t *testing.T) {
	var analyzers []analyzer.Analyzer
	for _, a := range model.SafetyAgents {
		analyzers = append(analyzers, &stubAnalyzer{name: a, fail: true})
	}
	for _, a := range model.BusinessAgents {
		analyzers = append(analyzers, &stubAnalyzer{name: a})
	}

	arb := &fakeArbitrator{output: sampleOutput()}
	o := New(Deps{
		Analyzers:  analyzers,
		Checkpoint: checkpoint.NewMemoryStore(),
		Arbitrator: arb,
		Logger:     core.NoopLogger{},
	})

	_, err := o.HandleDisruption(context.Background(), "flight AB123 diverted due to weather, crew at risk", "")
	require.Error(t, err)
	assert.Equal(t, core.KindUnavailable, core.KindOf(err))
	assert.Nil(t, arb.calledPhase1, "arbitrator must not run when all safety analyzers are unavailable")
}

func TestOrchestrator_Phase1SafetyFailsPhase2Recovers(t *testing.T) {
	var analyzers []analyzer.Analyzer
	for _, a := range model.SafetyAgents {
		analyzers = append(analyzers, &stubAnalyzer{name: a, failPhases: map[model.Phase]bool{model.PhaseInitial: true}})
	}
	for _, a := range model.BusinessAgents {
		analyzers = append(analyzers, &stubAnalyzer{name: a})
	}

	arb := &fakeArbitrator{output: sampleOutput()}
	o := New(Deps{
		Analyzers:  analyzers,
		Checkpoint: checkpoint.NewMemoryStore(),
		Arbitrator: arb,
		Logger:     core.NoopLogger{},
	})

	result, err := o.HandleDisruption(context.Background(), "flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err, "phase 2 safety recovery must let the run complete")
	require.NotNil(t, result)
	require.NotNil(t, arb.calledPhase1, "arbitrator must still run when only phase 1 safety analyzers were unavailable")
	require.NotNil(t, arb.calledPhase2)
}

func TestOrchestrator_ChecksCheckpointsAtEachBoundary(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	arb := &fakeArbitrator{output: sampleOutput()}
	o := New(Deps{
		Analyzers:  allHealthyAnalyzers(),
		Checkpoint: store,
		Arbitrator: arb,
		Logger:     core.NoopLogger{},
	})

	result, err := o.HandleDisruption(context.Background(), "flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err)

	cps, err := store.List(context.Background(), result.Thread)
	require.NoError(t, err)

	seen := make(map[model.CheckpointID]bool)
	for _, cp := range cps {
		seen[cp.CheckpointID] = true
	}
	for _, id := range []model.CheckpointID{
		model.CheckpointStart, model.CheckpointPhase1Complete, model.CheckpointPhase2Complete,
		model.CheckpointPhase3Complete, model.CheckpointEnd,
	} {
		assert.True(t, seen[id], "missing checkpoint %s", id)
	}
}
