package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPlan() *RecoveryPlan {
	return &RecoveryPlan{
		Steps: []RecoveryStep{
			{StepNumber: 1, StepName: "notify crew", ResponsibleAgent: AgentCrewCompliance, Dependencies: nil, EstimatedDuration: 5},
			{StepNumber: 2, StepName: "rebook pax", ResponsibleAgent: AgentGuestExperience, Dependencies: []int{1}, EstimatedDuration: 20},
		},
		CriticalPath: []int{1, 2},
	}
}

func TestComputeComposite(t *testing.T) {
	got := ComputeComposite(80, 60, 70, 50)
	want := 0.40*80 + 0.20*60 + 0.20*70 + 0.20*50
	assert.InDelta(t, want, got, 0.15)
}

func TestRecoverySolutionValidate_Valid(t *testing.T) {
	s := &RecoverySolution{
		SolutionID:        1,
		Title:             "Delay and rebook",
		Description:       "Delay 2h, rebook affected pax",
		Recommendations:   []string{"delay 2h"},
		SafetyScore:        90,
		CostScore:          70,
		PassengerScore:     60,
		NetworkScore:       65,
		Confidence:         0.8,
		EstimatedDuration:  120,
		RecoveryPlan:       validPlan(),
	}
	s.CompositeScore = ComputeComposite(s.SafetyScore, s.CostScore, s.PassengerScore, s.NetworkScore)
	assert.Empty(t, s.Validate())
}

func TestRecoverySolutionValidate_BadComposite(t *testing.T) {
	s := &RecoverySolution{
		SolutionID:        1,
		SafetyScore:       90,
		CostScore:         70,
		PassengerScore:    60,
		NetworkScore:      65,
		CompositeScore:    10, // wildly wrong
		RecoveryPlan:      validPlan(),
	}
	v := s.Validate()
	assert.NotEmpty(t, v)
}

func TestDominates(t *testing.T) {
	a := &RecoverySolution{SafetyScore: 90, CostScore: 80, PassengerScore: 80, NetworkScore: 80}
	b := &RecoverySolution{SafetyScore: 80, CostScore: 80, PassengerScore: 80, NetworkScore: 80}
	assert.True(t, a.Dominates(b))
	assert.False(t, b.Dominates(a))

	c := &RecoverySolution{SafetyScore: 80, CostScore: 90, PassengerScore: 80, NetworkScore: 80}
	// a has higher safety, c has higher cost: neither dominates
	assert.False(t, a.Dominates(c))
	assert.False(t, c.Dominates(a))
}

func TestRecoveryPlanValidate(t *testing.T) {
	p := validPlan()
	assert.Empty(t, p.Validate())

	bad := &RecoveryPlan{
		Steps: []RecoveryStep{
			{StepNumber: 1, Dependencies: []int{1}},
			{StepNumber: 3, Dependencies: []int{5}},
		},
	}
	v := bad.Validate()
	assert.NotEmpty(t, v)
}
