package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/airline-ops/recovery-orchestrator/model"
)

type stubAnalyzer struct {
	name  model.AgentName
	delay time.Duration
	err   error
	resp  *model.AnalyzerResponse
}

func (s *stubAnalyzer) Name() model.AgentName { return s.name }

func (s *stubAnalyzer) Analyze(ctx context.Context, req Request) (*model.AnalyzerResponse, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestSupervisor_Success(t *testing.T) {
	sup := NewSupervisor(nil)
	a := &stubAnalyzer{
		name: model.AgentFinance,
		resp: &model.AnalyzerResponse{AgentName: model.AgentFinance, Phase: model.PhaseInitial, Status: model.StatusSuccess, Confidence: 0.9},
	}
	resp := sup.Run(context.Background(), a, Request{Phase: model.PhaseInitial})
	assert.Equal(t, model.StatusSuccess, resp.Status)
}

func TestSupervisor_Error(t *testing.T) {
	sup := NewSupervisor(nil)
	a := &stubAnalyzer{name: model.AgentCargo, err: errors.New("boom")}
	resp := sup.Run(context.Background(), a, Request{Phase: model.PhaseInitial})
	assert.Equal(t, model.StatusError, resp.Status)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestSupervisor_Timeout(t *testing.T) {
	sup := NewSupervisor(nil)
	a := &stubAnalyzer{name: model.AgentFinance, delay: 200 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	resp := sup.Run(ctx, a, Request{Phase: model.PhaseInitial})
	assert.Equal(t, model.StatusTimeout, resp.Status)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestDeadlineFor(t *testing.T) {
	assert.Equal(t, SafetyDeadline, DeadlineFor(model.AgentCrewCompliance))
	assert.Equal(t, BusinessDeadline, DeadlineFor(model.AgentFinance))
}
