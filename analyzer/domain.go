package analyzer

import (
	"context"
	"fmt"

	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// DomainAnalyzer is the single concrete implementation behind all seven
// domain workers: they are interchangeable modulo their fixed name,
// domain label, and the operational-data table they read. This mirrors
// the uniform capability contract in this codebase's agent/tool split --
// one struct, config-driven identity, rather than seven bespoke types.
type DomainAnalyzer struct {
	agent     model.AgentName
	domain    string
	dataTable string
	keysFor   func(*model.Disruption) []string
	deps      Deps
}

// NewDomainAnalyzer constructs one of the seven analyzers. keysFor
// derives the operational-data keys this analyzer needs from the
// disruption (e.g. crew roster keys, MEL keys); a nil keysFor means the
// analyzer does not need a batched read for this disruption.
func NewDomainAnalyzer(agent model.AgentName, domain, dataTable string, keysFor func(*model.Disruption) []string, deps Deps) *DomainAnalyzer {
	return &DomainAnalyzer{agent: agent, domain: domain, dataTable: dataTable, keysFor: keysFor, deps: deps}
}

func (a *DomainAnalyzer) Name() model.AgentName { return a.agent }

// Analyze issues one batched operational-data read (whenever keysFor
// yields at least one key), invokes the model gateway exactly once, and best-effort
// persists the resulting response as a per-agent checkpoint.
func (a *DomainAnalyzer) Analyze(ctx context.Context, req Request) (*model.AnalyzerResponse, error) {
	var keys []string
	if a.keysFor != nil {
		keys = a.keysFor(req.Disruption)
	}
	if len(keys) > 0 && a.deps.Accessor != nil {
		if _, _, err := a.deps.Accessor.BatchGet(ctx, a.dataTable, keys, 0); err != nil {
			return nil, fmt.Errorf("%s: batch read %s: %w", a.agent, a.dataTable, err)
		}
	}

	prompt := BuildEnvelope(a.domain, req)
	tier := gateway.TierForAgent(a.agent.IsSafety())
	schema := gateway.Schema{
		Name:        "analyzer_response",
		Description: "recommendation (string), reasoning (string), confidence (0..1), binding_constraints (array of strings, safety analyzers only)",
	}

	result, err := a.deps.Gateway.Complete(ctx, prompt, schema, tier)
	if err != nil {
		return nil, fmt.Errorf("%s: model call: %w", a.agent, err)
	}

	parsed, err := parseModelResponse(result.Raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.agent, err)
	}

	resp := &model.AnalyzerResponse{
		AgentName:      a.agent,
		Phase:          req.Phase,
		Status:         model.StatusSuccess,
		Recommendation: parsed.Recommendation,
		Confidence:     parsed.Confidence,
		Reasoning:      parsed.Reasoning,
	}
	if a.agent.IsSafety() {
		resp.BindingConstraints = parsed.BindingConstraints
	}

	if a.deps.Checkpoint != nil {
		metadata := map[string]string{"agent_name": string(a.agent), "phase": string(req.Phase)}
		_, _ = a.deps.Checkpoint.Save(ctx, req.Thread, model.CheckpointID(fmt.Sprintf("analyzer_%s_%s", a.agent, req.Phase)), resp, metadata)
	}

	return resp, nil
}

var _ Analyzer = (*DomainAnalyzer)(nil)

// BuildSevenAnalyzers constructs the fixed roster of seven domain
// analyzers against the shared Deps, each with its operational-data
// table and key-derivation function.
func BuildSevenAnalyzers(deps Deps) []Analyzer {
	return []Analyzer{
		NewDomainAnalyzer(model.AgentCrewCompliance, "crew compliance and flight-duty-period rules", "crew_rosters", keysByFlightPrefix("crew"), deps),
		NewDomainAnalyzer(model.AgentMaintenance, "aircraft maintenance and MEL status", "maintenance_records", keysByFlightPrefix("mel"), deps),
		NewDomainAnalyzer(model.AgentRegulatory, "regulatory and slot compliance", "regulatory_rules", keysByFlightPrefix("reg"), deps),
		NewDomainAnalyzer(model.AgentNetwork, "network and downstream connection impact", "network_schedule", keysByFlightPrefix("net"), deps),
		NewDomainAnalyzer(model.AgentGuestExperience, "passenger and guest experience impact", "passenger_manifest", keysByFlightPrefix("pax"), deps),
		NewDomainAnalyzer(model.AgentCargo, "cargo and freight impact", "cargo_manifest", keysByFlightPrefix("cargo"), deps),
		NewDomainAnalyzer(model.AgentFinance, "cost and financial impact", "cost_models", keysByFlightPrefix("cost"), deps),
	}
}

// keysByFlightPrefix returns a fixed pair of synthetic operational-data
// keys, namespaced per table kind; the disruption text is not read. Real
// deployments replace this with NLP-extracted flight/tail/crew
// identifiers; the shape (>1 key, batched) is what this module exercises.
func keysByFlightPrefix(prefix string) func(*model.Disruption) []string {
	return func(d *model.Disruption) []string {
		return []string{
			fmt.Sprintf("%s:primary", prefix),
			fmt.Sprintf("%s:downstream", prefix),
		}
	}
}
