package model

import "fmt"

// RecoveryStep is one node in a RecoveryPlan's step DAG.
type RecoveryStep struct {
	StepNumber          int      `json:"step_number"`
	StepName            string   `json:"step_name"`
	Description         string   `json:"description"`
	ResponsibleAgent    AgentName `json:"responsible_agent"`
	Dependencies        []int    `json:"dependencies"`
	EstimatedDuration   float64  `json:"estimated_duration_minutes"`
	AutomationPossible  bool     `json:"automation_possible"`
	ActionType          string   `json:"action_type"`
	SuccessCriteria     string   `json:"success_criteria"`
	RollbackProcedure   string   `json:"rollback_procedure,omitempty"`
}

// RecoveryPlan is a DAG of RecoverySteps: step numbers contiguous 1..N,
// dependencies strictly backward-pointing.
type RecoveryPlan struct {
	Steps            []RecoveryStep `json:"steps"`
	CriticalPath     []int          `json:"critical_path"`
	ContingencyPlans []string       `json:"contingency_plans,omitempty"`
}

// Validate checks the DAG invariants: contiguous numbering starting at 1,
// no self-dependency, no forward reference, no duplicate dependencies,
// and critical_path values drawn from the step numbers.
func (p *RecoveryPlan) Validate() []string {
	var v []string
	if len(p.Steps) == 0 {
		v = append(v, "recovery plan has no steps")
		return v
	}

	stepNumbers := make(map[int]bool, len(p.Steps))
	for i, s := range p.Steps {
		expected := i + 1
		if s.StepNumber != expected {
			v = append(v, fmt.Sprintf("step at index %d has step_number %d, expected %d (contiguous 1..N)", i, s.StepNumber, expected))
		}
		stepNumbers[s.StepNumber] = true
	}

	for _, s := range p.Steps {
		seen := make(map[int]bool, len(s.Dependencies))
		for _, dep := range s.Dependencies {
			if dep == s.StepNumber {
				v = append(v, fmt.Sprintf("step %d depends on itself", s.StepNumber))
			}
			if dep >= s.StepNumber {
				v = append(v, fmt.Sprintf("step %d has forward/self dependency on %d", s.StepNumber, dep))
			}
			if seen[dep] {
				v = append(v, fmt.Sprintf("step %d lists duplicate dependency %d", s.StepNumber, dep))
			}
			seen[dep] = true
		}
	}

	for _, cp := range p.CriticalPath {
		if !stepNumbers[cp] {
			v = append(v, fmt.Sprintf("critical_path references unknown step %d", cp))
		}
	}

	return v
}
