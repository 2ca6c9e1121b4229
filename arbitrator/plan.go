package arbitrator

import "github.com/airline-ops/recovery-orchestrator/model"

// buildSolutions converts raw model candidates into validated
// RecoverySolutions: candidates that violate any binding constraint are
// dropped outright, and each surviving candidate's recovery plan is
// built, validated, and — on a single invariant violation — repaired
// once by dropping the offending dependencies before being re-validated.
// A plan that is still invalid after repair drops its solution. A
// candidate whose clamped safety score is zero is dropped regardless of
// what it self-reported in violates_constraints.
func buildSolutions(candidates []candidate, binding []string) []model.RecoverySolution {
	var out []model.RecoverySolution
	for _, c := range candidates {
		if violatesAny(c.ViolatesConstraints, binding) {
			continue
		}
		plan := buildPlan(c.Steps)
		if violations := plan.Validate(); len(violations) > 0 {
			plan = repairPlan(plan)
			if violations := plan.Validate(); len(violations) > 0 {
				continue
			}
		}

		safety := clampScore(c.SafetyScore)
		if safety == 0 {
			continue
		}
		cost := clampScore(c.CostScore)
		passenger := clampScore(c.PassengerScore)
		network := clampScore(c.NetworkScore)

		out = append(out, model.RecoverySolution{
			Title:             c.Title,
			Description:       c.Description,
			Recommendations:   c.Recommendations,
			SafetyScore:       safety,
			CostScore:         cost,
			PassengerScore:    passenger,
			NetworkScore:      network,
			CompositeScore:    model.ComputeComposite(safety, cost, passenger, network),
			Pros:              c.Pros,
			Cons:              c.Cons,
			Risks:             c.Risks,
			Confidence:        clampUnit(c.Confidence),
			EstimatedDuration: c.EstimatedDuration,
			RecoveryPlan:      plan,
		})
	}
	return out
}

// violatesAny reports whether any of a candidate's self-reported
// violations names a binding constraint (exact string match, since both
// come from the same model call and are expected to echo each other
// verbatim).
func violatesAny(violated, binding []string) bool {
	if len(violated) == 0 {
		return false
	}
	bindingSet := make(map[string]bool, len(binding))
	for _, b := range binding {
		bindingSet[b] = true
	}
	for _, v := range violated {
		if bindingSet[v] {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// buildPlan assigns contiguous 1..N step numbers in the candidate's
// given order and translates each step's 0-based dependency indices
// (into the preceding steps array) into 1-based step_number references,
// then computes the critical path.
func buildPlan(steps []candidateStep) *model.RecoveryPlan {
	out := make([]model.RecoveryStep, len(steps))
	for i, s := range steps {
		var deps []int
		for _, d := range s.Dependencies {
			stepNum := d + 1
			if stepNum >= 1 && stepNum < i+1 {
				deps = append(deps, stepNum)
			}
		}
		out[i] = model.RecoveryStep{
			StepNumber:         i + 1,
			StepName:           s.StepName,
			Description:        s.Description,
			ResponsibleAgent:   model.AgentName(s.ResponsibleAgent),
			Dependencies:       deps,
			EstimatedDuration:  s.EstimatedDuration,
			AutomationPossible: s.AutomationPossible,
			ActionType:         s.ActionType,
			SuccessCriteria:    s.SuccessCriteria,
			RollbackProcedure:  s.RollbackProcedure,
		}
	}
	plan := &model.RecoveryPlan{Steps: out}
	plan.CriticalPath = criticalPath(out)
	return plan
}

// repairPlan drops every dependency that violates the DAG invariants
// (self-reference, forward reference, duplicate) and recomputes the
// critical path in a single repair pass.
func repairPlan(plan *model.RecoveryPlan) *model.RecoveryPlan {
	repaired := make([]model.RecoveryStep, len(plan.Steps))
	for i, s := range plan.Steps {
		var deps []int
		seen := make(map[int]bool)
		for _, d := range s.Dependencies {
			if d >= s.StepNumber || d < 1 || seen[d] {
				continue
			}
			seen[d] = true
			deps = append(deps, d)
		}
		s.Dependencies = deps
		repaired[i] = s
	}
	return &model.RecoveryPlan{
		Steps:            repaired,
		CriticalPath:     criticalPath(repaired),
		ContingencyPlans: plan.ContingencyPlans,
	}
}

// criticalPath returns the longest dependency chain by cumulative
// estimated duration, ties broken by the chain with the lowest set of
// step numbers (lexicographically smallest).
func criticalPath(steps []model.RecoveryStep) []int {
	if len(steps) == 0 {
		return nil
	}
	byNumber := make(map[int]model.RecoveryStep, len(steps))
	for _, s := range steps {
		byNumber[s.StepNumber] = s
	}

	memoDuration := make(map[int]float64)
	memoPath := make(map[int][]int)

	var longestTo func(n int) (float64, []int)
	longestTo = func(n int) (float64, []int) {
		if d, ok := memoDuration[n]; ok {
			return d, memoPath[n]
		}
		step := byNumber[n]
		best := 0.0
		var bestPath []int
		for _, dep := range step.Dependencies {
			d, p := longestTo(dep)
			if bestPath == nil || d > best || (d == best && lexLess(p, bestPath)) {
				best = d
				bestPath = p
			}
		}
		total := best + step.EstimatedDuration
		path := append(append([]int{}, bestPath...), n)
		memoDuration[n] = total
		memoPath[n] = path
		return total, path
	}

	var best float64
	var bestPath []int
	for _, s := range steps {
		d, p := longestTo(s.StepNumber)
		if bestPath == nil || d > best || (d == best && lexLess(p, bestPath)) {
			best = d
			bestPath = p
		}
	}
	return bestPath
}

func lexLess(a, b []int) bool {
	if b == nil {
		return false
	}
	if a == nil {
		return true
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
