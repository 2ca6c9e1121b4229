package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/dataaccess"
	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/model"
)

func testDeps() (Deps, *gateway.FakeGateway, *dataaccess.MemoryStore) {
	store := dataaccess.NewMemoryStore()
	store.Set("crew_rosters", "crew:primary", []byte("roster-a"))
	store.Set("crew_rosters", "crew:downstream", []byte("roster-b"))

	fg := gateway.NewFakeGateway()
	fg.Responses["analyzer_response"] = gateway.Result{
		Raw:       []byte(`{"recommendation":"delay 45m","reasoning":"crew legal until 1800Z","confidence":0.82,"binding_constraints":["crew duty expires 1800Z"]}`),
		ModelUsed: "fake-model",
	}

	deps := Deps{
		Gateway:    fg,
		Accessor:   dataaccess.NewBatchedAccessor(store, 0, 0, nil),
		Checkpoint: checkpoint.NewMemoryStore(),
	}
	return deps, fg, store
}

func TestDomainAnalyzer_BatchesReadsAndInvokesModelOnce(t *testing.T) {
	deps, fg, _ := testDeps()
	a := NewDomainAnalyzer(model.AgentCrewCompliance, "crew compliance", "crew_rosters", keysByFlightPrefix("crew"), deps)

	disruption, err := model.NewDisruption("flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err)

	resp, err := a.Analyze(context.Background(), Request{Disruption: disruption, Thread: model.NewThread(), Phase: model.PhaseInitial})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, resp.Status)
	assert.Equal(t, "delay 45m", resp.Recommendation)
	assert.Equal(t, 0.82, resp.Confidence)
	assert.NotEmpty(t, resp.BindingConstraints)
	assert.Len(t, fg.Calls, 1)
}

func TestDomainAnalyzer_OnlySafetyAgentsEmitBindingConstraints(t *testing.T) {
	deps, _, _ := testDeps()
	a := NewDomainAnalyzer(model.AgentFinance, "cost impact", "cost_models", keysByFlightPrefix("cost"), deps)

	disruption, err := model.NewDisruption("flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err)

	resp, err := a.Analyze(context.Background(), Request{Disruption: disruption, Thread: model.NewThread(), Phase: model.PhaseInitial})
	require.NoError(t, err)

	assert.Empty(t, resp.BindingConstraints, "business-tier analyzer must not surface binding constraints even if the model emits them")
}

func TestBuildSevenAnalyzers(t *testing.T) {
	deps, _, _ := testDeps()
	all := BuildSevenAnalyzers(deps)
	require.Len(t, all, 7)

	seen := make(map[model.AgentName]bool)
	for _, a := range all {
		seen[a.Name()] = true
	}
	for _, agent := range model.AllAgents {
		assert.True(t, seen[agent], "missing analyzer for %s", agent)
	}
}

func TestBuildEnvelope_RevisionIncludesPhase1Findings(t *testing.T) {
	disruption, err := model.NewDisruption("flight AB123 diverted due to weather, crew at risk", "")
	require.NoError(t, err)

	collation := model.NewCollation(model.PhaseInitial, []*model.AnalyzerResponse{
		{AgentName: model.AgentCrewCompliance, Phase: model.PhaseInitial, Status: model.StatusSuccess, Recommendation: "delay 45m", BindingConstraints: []string{"crew duty expires 1800Z"}},
	})

	env := BuildEnvelope("crew compliance", Request{
		Disruption: disruption,
		Phase:      model.PhaseRevision,
		Phase1:     collation,
	})

	assert.Contains(t, env, "Task: revision")
	assert.Contains(t, env, "delay 45m")
	assert.Contains(t, env, "crew duty expires 1800Z")
}
