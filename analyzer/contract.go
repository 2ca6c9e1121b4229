// Package analyzer implements the uniform Analyzer contract:
// the call/response shape the seven domain analyzers obey, the batched-
// read access pattern they use for operational data, and the per-agent
// supervisor that enforces deadlines and converts exceptions into a
// tagged status rather than letting them escape (the "Exception-
// for-control-flow").
package analyzer

import (
	"context"

	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/dataaccess"
	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// Request is the input one Analyzer call receives.
type Request struct {
	Disruption *model.Disruption
	Thread     model.Thread
	Phase      model.Phase

	// Phase1 carries the complete Phase 1 Collation, grouped per
	// analyzer, when Phase == PhaseRevision (the "augmentation
	// protocol between phases"). Nil during Phase 1.
	Phase1 *model.Collation
}

// Analyzer is the uniform contract every domain worker implements. A
// returned error indicates a true exception (network failure, gateway
// error); the Supervisor converts it into a status=error
// AnalyzerResponse rather than letting it propagate.
type Analyzer interface {
	Name() model.AgentName
	Analyze(ctx context.Context, req Request) (*model.AnalyzerResponse, error)
}

// Deps bundles the shared collaborators every DomainAnalyzer uses:
// exactly one data accessor read batch per call, exactly one model
// invocation, and a best-effort per-agent checkpoint write.
type Deps struct {
	Gateway    gateway.ModelGateway
	Accessor   dataaccess.Accessor
	Checkpoint checkpoint.Store
}
