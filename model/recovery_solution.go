package model

import (
	"fmt"
	"math"
)

// Score weights for composite_score = 0.40*safety + 0.20*cost +
// 0.20*passenger + 0.20*network.
const (
	WeightSafety    = 0.40
	WeightCost      = 0.20
	WeightPassenger = 0.20
	WeightNetwork   = 0.20

	CompositeTolerance = 0.1
)

// RecoverySolution is one candidate recovery option, fully scored.
type RecoverySolution struct {
	SolutionID      int      `json:"solution_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`

	SafetyScore    float64 `json:"safety_score"`
	CostScore      float64 `json:"cost_score"`
	PassengerScore float64 `json:"passenger_score"`
	NetworkScore   float64 `json:"network_score"`
	CompositeScore float64 `json:"composite_score"`

	Pros              []string      `json:"pros"`
	Cons              []string      `json:"cons"`
	Risks             []string      `json:"risks"`
	Confidence        float64       `json:"confidence"`
	EstimatedDuration float64       `json:"estimated_duration_minutes"`
	RecoveryPlan      *RecoveryPlan `json:"recovery_plan"`
}

// ComputeComposite returns the expected composite score for the
// solution's four dimension scores.
func ComputeComposite(safety, cost, passenger, network float64) float64 {
	raw := WeightSafety*safety + WeightCost*cost + WeightPassenger*passenger + WeightNetwork*network
	return math.Round(raw*10) / 10
}

// Validate enforces score ranges, the composite formula tolerance, and
// recovery plan validity.
func (s *RecoverySolution) Validate() []string {
	var v []string
	if s.SolutionID < 1 || s.SolutionID > 3 {
		v = append(v, fmt.Sprintf("solution_id %d outside {1,2,3}", s.SolutionID))
	}
	for name, val := range map[string]float64{
		"safety_score":    s.SafetyScore,
		"cost_score":      s.CostScore,
		"passenger_score": s.PassengerScore,
		"network_score":   s.NetworkScore,
		"composite_score": s.CompositeScore,
	} {
		if val < 0 || val > 100 {
			v = append(v, fmt.Sprintf("%s %v outside [0,100]", name, val))
		}
	}
	expected := ComputeComposite(s.SafetyScore, s.CostScore, s.PassengerScore, s.NetworkScore)
	if math.Abs(s.CompositeScore-expected) > CompositeTolerance {
		v = append(v, fmt.Sprintf("composite_score %v deviates from expected %v by more than %v", s.CompositeScore, expected, CompositeTolerance))
	}
	if s.RecoveryPlan == nil {
		v = append(v, "recovery plan is nil")
	} else {
		v = append(v, s.RecoveryPlan.Validate()...)
	}
	return v
}

// Dominates reports whether s Pareto-dominates other: s is >= other on
// all four dimensions and > on at least one.
func (s *RecoverySolution) Dominates(other *RecoverySolution) bool {
	geAll := s.SafetyScore >= other.SafetyScore &&
		s.CostScore >= other.CostScore &&
		s.PassengerScore >= other.PassengerScore &&
		s.NetworkScore >= other.NetworkScore
	gtAny := s.SafetyScore > other.SafetyScore ||
		s.CostScore > other.CostScore ||
		s.PassengerScore > other.PassengerScore ||
		s.NetworkScore > other.NetworkScore
	return geAll && gtAny
}
