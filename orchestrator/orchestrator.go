// Package orchestrator implements the three-phase fan-out/fan-in pipeline
// Phase 1 (Initial Analysis) fans out to all seven domain
// analyzers concurrently, Phase 2 (Revision) re-invokes them augmented
// with the Phase 1 Collation, and Phase 3 (Arbitration) hands both
// collations to the Arbitrator. Each phase boundary is checkpointed so a
// run can resume after a crash. Modeled on this codebase's orchestration
// fan-out/fan-in executor: goroutines plus a wait barrier per phase, with
// per-task supervision rather than letting one failing task stop the rest.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/airline-ops/recovery-orchestrator/analyzer"
	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/metrics"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// Arbitrator is the Phase 3 collaborator: given both collations it
// produces the final ranked, scored ArbitratorOutput. Defined here to
// keep orchestrator decoupled from the arbitrator package's internals;
// *arbitrator.Arbitrator satisfies it.
type Arbitrator interface {
	Arbitrate(ctx context.Context, thread model.Thread, disruption *model.Disruption, phase1, phase2 *model.Collation) (*model.ArbitratorOutput, error)
}

// Deps bundles the Orchestrator's collaborators.
type Deps struct {
	Analyzers  []analyzer.Analyzer
	Supervisor *analyzer.Supervisor
	Checkpoint checkpoint.Store
	Arbitrator Arbitrator
	Logger     core.Logger
	Metrics    *metrics.Recorder
}

// Orchestrator runs the three-phase pipeline for one disruption.
type Orchestrator struct {
	deps Deps
}

// New builds an Orchestrator. A nil Supervisor/Logger is replaced with a
// default/no-op implementation.
func New(deps Deps) *Orchestrator {
	if deps.Supervisor == nil {
		deps.Supervisor = analyzer.NewSupervisor(deps.Logger)
	}
	if deps.Logger == nil {
		deps.Logger = core.NoopLogger{}
	}
	return &Orchestrator{deps: deps}
}

// Result is the outcome of one HandleDisruption call.
type Result struct {
	Thread model.Thread
	Output *model.ArbitratorOutput
}

// HandleDisruption runs the full pipeline for rawText. When
// continuationID names a thread with existing checkpoints, the run
// resumes from the latest completed phase instead of starting at Phase 1.
func (o *Orchestrator) HandleDisruption(ctx context.Context, rawText, continuationID string) (*Result, error) {
	disruption, err := model.NewDisruption(rawText, continuationID)
	if err != nil {
		return nil, core.NewError("orchestrator.HandleDisruption", core.KindInvalidRequest, "invalid disruption text", err)
	}

	thread := model.NewThread()
	var resumeFrom *model.Checkpoint
	if continuationID != "" {
		thread = model.Thread(continuationID)
		// Look up phase-boundary checkpoints by id: per-analyzer
		// checkpoints share the thread and may be newer than them.
		for _, id := range []model.CheckpointID{model.CheckpointEnd, model.CheckpointPhase3Complete, model.CheckpointPhase2Complete, model.CheckpointPhase1Complete} {
			if cp, ok, _ := o.deps.Checkpoint.Load(ctx, thread, id); ok && time.Since(cp.Timestamp) < allowResumeWindow {
				resumeFrom = cp
				break
			}
		}
	}

	o.deps.Logger.Info("orchestration run starting", map[string]interface{}{
		"thread": thread.String(), "resuming": resumeFrom != nil,
	})

	if status, err := o.checkpoint(ctx, thread, model.CheckpointStart, disruption); err != nil {
		o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointStart, "status": status})
	}

	var phase1, phase2 *model.Collation

	if resumeFrom != nil && hasReachedOrPast(resumeFrom.CheckpointID, model.CheckpointPhase1Complete) {
		if c, err := o.loadCollation(ctx, thread, model.CheckpointPhase1Complete); err != nil {
			o.deps.Logger.Warn("resume from checkpoint failed, re-running phase 1", map[string]interface{}{"thread": thread.String(), "error": err.Error()})
		} else {
			phase1 = c
		}
	}
	if phase1 == nil {
		phase1 = o.runPhase(ctx, disruption, thread, model.PhaseInitial, nil)
		if status, err := o.checkpoint(ctx, thread, model.CheckpointPhase1Complete, phase1); err != nil {
			o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointPhase1Complete, "status": status})
		}
	}

	if resumeFrom != nil && hasReachedOrPast(resumeFrom.CheckpointID, model.CheckpointPhase2Complete) {
		if c, err := o.loadCollation(ctx, thread, model.CheckpointPhase2Complete); err != nil {
			o.deps.Logger.Warn("resume from checkpoint failed, re-running phase 2", map[string]interface{}{"thread": thread.String(), "error": err.Error()})
		} else {
			phase2 = c
		}
	}
	if phase2 == nil {
		phase2 = o.runPhase(ctx, disruption, thread, model.PhaseRevision, phase1)
		if status, err := o.checkpoint(ctx, thread, model.CheckpointPhase2Complete, phase2); err != nil {
			o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointPhase2Complete, "status": status})
		}
	}

	if phase1.SafetyAllFailed() && phase2.SafetyAllFailed() {
		o.deps.Metrics.OrchestrationUnavailable(ctx, "all_safety_unavailable")
		if status, err := o.checkpointWithMetadata(ctx, thread, model.CheckpointEnd, phase2, map[string]string{"reason": "all_safety_unavailable"}); err != nil {
			o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointEnd, "status": status})
		}
		return nil, core.NewError("orchestrator.HandleDisruption", core.KindUnavailable, "all safety analyzers unavailable", core.ErrUnavailable)
	}

	output, err := o.deps.Arbitrator.Arbitrate(ctx, thread, disruption, phase1, phase2)
	if err != nil {
		return nil, core.NewError("orchestrator.HandleDisruption", core.KindInternal, "arbitration failed", err)
	}

	if status, err := o.checkpoint(ctx, thread, model.CheckpointPhase3Complete, output); err != nil {
		o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointPhase3Complete, "status": status})
	}
	if status, err := o.checkpoint(ctx, thread, model.CheckpointEnd, output); err != nil {
		o.deps.Logger.Warn("checkpoint write degraded", map[string]interface{}{"checkpoint_id": model.CheckpointEnd, "status": status})
	}

	o.deps.Logger.Info("orchestration run complete", map[string]interface{}{"thread": thread.String()})
	return &Result{Thread: thread, Output: output}, nil
}

// runPhase fans out to every analyzer concurrently and blocks until every
// supervisor has returned: the phase waits for every supervisor to
// return, so no status=running ever remains.
func (o *Orchestrator) runPhase(ctx context.Context, disruption *model.Disruption, thread model.Thread, phase model.Phase, prior *model.Collation) *model.Collation {
	start := time.Now()
	responses := make([]*model.AnalyzerResponse, len(o.deps.Analyzers))

	var wg sync.WaitGroup
	wg.Add(len(o.deps.Analyzers))
	for i, a := range o.deps.Analyzers {
		go func(i int, a analyzer.Analyzer) {
			defer wg.Done()
			req := analyzer.Request{Disruption: disruption, Thread: thread, Phase: phase, Phase1: prior}
			resp := o.deps.Supervisor.Run(ctx, a, req)
			responses[i] = resp
			o.deps.Metrics.AnalyzerOutcome(ctx, string(a.Name()), string(resp.Status))
		}(i, a)
	}
	wg.Wait()

	o.deps.Metrics.PhaseDuration(ctx, string(phase), time.Since(start).Seconds())
	return model.NewCollation(phase, responses)
}

func (o *Orchestrator) checkpoint(ctx context.Context, thread model.Thread, id model.CheckpointID, state interface{}) (checkpoint.WriteStatus, error) {
	return o.checkpointWithMetadata(ctx, thread, id, state, nil)
}

// checkpointWithMetadata writes a checkpoint with additional metadata keys
// merged alongside the standard checkpoint_id entry, e.g. a halt reason.
func (o *Orchestrator) checkpointWithMetadata(ctx context.Context, thread model.Thread, id model.CheckpointID, state interface{}, extra map[string]string) (checkpoint.WriteStatus, error) {
	meta := map[string]string{"checkpoint_id": string(id)}
	for k, v := range extra {
		meta[k] = v
	}
	return o.deps.Checkpoint.Save(ctx, thread, id, state, meta)
}

func (o *Orchestrator) loadCollation(ctx context.Context, thread model.Thread, id model.CheckpointID) (*model.Collation, error) {
	cp, ok, err := o.deps.Checkpoint.Load(ctx, thread, id)
	if err != nil || !ok {
		return nil, err
	}
	var c model.Collation
	if err := unmarshalCheckpointState(cp, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// unmarshalCheckpointState decodes a checkpoint's inline state into out.
// Resuming from an off-loaded checkpoint requires the same Offloader
// used to write it; the orchestrator only resumes inline checkpoints and
// otherwise re-runs the phase, which is always safe (analyzers are
// idempotent reads plus a single model call).
func unmarshalCheckpointState(cp *model.Checkpoint, out interface{}) error {
	if cp.IsOffloaded() {
		return fmt.Errorf("checkpoint %s is off-loaded to %s; resume requires re-running the phase", cp.CheckpointID, cp.StateRef)
	}
	if err := json.Unmarshal(cp.State, out); err != nil {
		return fmt.Errorf("unmarshal checkpoint %s state: %w", cp.CheckpointID, err)
	}
	return nil
}

// phaseOrder ranks checkpoint ids by pipeline position for resume
// decisions.
var phaseOrder = map[model.CheckpointID]int{
	model.CheckpointStart:          0,
	model.CheckpointPhase1Complete: 1,
	model.CheckpointPhase2Complete: 2,
	model.CheckpointPhase3Complete: 3,
	model.CheckpointEnd:            4,
}

func hasReachedOrPast(current, target model.CheckpointID) bool {
	return phaseOrder[current] >= phaseOrder[target]
}

// allowResumeWindow bounds how stale a resumed checkpoint may be before
// the orchestrator prefers to restart the phase instead (defensive
// against resuming a run whose TTL is about to lapse).
const allowResumeWindow = 24 * time.Hour
