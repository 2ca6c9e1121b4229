package analyzer

import (
	"context"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// SafetyDeadline and BusinessDeadline are the per-tier per-agent
// deadlines enforced by the Supervisor.
const (
	SafetyDeadline   = 60 * time.Second
	BusinessDeadline = 45 * time.Second
)

// Supervisor wraps one Analyzer call with a per-agent deadline and
// cooperative cancellation. It never lets a panic/error escape: on
// deadline it returns status=timeout, on error it returns status=error,
// both with confidence 0.
type Supervisor struct {
	logger core.Logger
}

// NewSupervisor builds a Supervisor; a nil logger discards output.
func NewSupervisor(logger core.Logger) *Supervisor {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &Supervisor{logger: logger}
}

// DeadlineFor returns the per-agent deadline for agent (safety tier gets
// the longer budget).
func DeadlineFor(agent model.AgentName) time.Duration {
	if agent.IsSafety() {
		return SafetyDeadline
	}
	return BusinessDeadline
}

// Run executes a.Analyze under a deadline, always returning a valid
// AnalyzerResponse (never an error) so the orchestrator's phase barrier
// can proceed unconditionally once every supervisor has returned.
func (s *Supervisor) Run(ctx context.Context, a Analyzer, req Request) *model.AnalyzerResponse {
	deadline := DeadlineFor(a.Name())
	callCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	resultCh := make(chan supervisorResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- supervisorResult{err: panicToError(r)}
			}
		}()
		resp, err := a.Analyze(callCtx, req)
		resultCh <- supervisorResult{resp: resp, err: err}
	}()

	select {
	case <-callCtx.Done():
		elapsed := time.Since(start).Seconds()
		s.logger.Warn("analyzer supervisor deadline exceeded", map[string]interface{}{
			"agent_name": a.Name(), "phase": req.Phase, "deadline_seconds": deadline.Seconds(),
		})
		return model.NewFailureResponse(a.Name(), req.Phase, model.StatusTimeout, elapsed, "supervisor deadline exceeded")

	case res := <-resultCh:
		elapsed := time.Since(start).Seconds()
		if res.err != nil {
			s.logger.Error("analyzer returned error", map[string]interface{}{
				"agent_name": a.Name(), "phase": req.Phase, "error": res.err.Error(),
			})
			return model.NewFailureResponse(a.Name(), req.Phase, model.StatusError, elapsed, res.err.Error())
		}
		if res.resp == nil {
			return model.NewFailureResponse(a.Name(), req.Phase, model.StatusError, elapsed, "analyzer returned nil response")
		}
		res.resp.DurationSeconds = elapsed
		return res.resp
	}
}

type supervisorResult struct {
	resp *model.AnalyzerResponse
	err  error
}

func panicToError(r interface{}) error {
	return core.NewError("analyzer.Analyze", core.KindInternal, "panic recovered in analyzer", errFromPanic(r))
}

func errFromPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{r}
}

type panicValue struct{ v interface{} }

func (p *panicValue) Error() string { return toString(p.v) }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "panic"
}
