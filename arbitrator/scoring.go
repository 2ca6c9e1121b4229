package arbitrator

import (
	"sort"

	"github.com/airline-ops/recovery-orchestrator/model"
)

// paretoFilter drops any solution dominated by another ("no
// sibling is >= on all four dimensions and > on at least one").
func paretoFilter(solutions []model.RecoverySolution) []model.RecoverySolution {
	var out []model.RecoverySolution
	for i := range solutions {
		dominated := false
		for j := range solutions {
			if i == j {
				continue
			}
			if solutions[j].Dominates(&solutions[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, solutions[i])
		}
	}
	if len(out) > 3 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CompositeScore > out[j].CompositeScore })
		out = out[:3]
	}
	return out
}

// rank sorts solutions by composite_score descending, ties broken by
// safety_score descending, further ties by original order, and assigns
// solution_id 1..N in the resulting order.
func rank(solutions []model.RecoverySolution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		if solutions[i].CompositeScore != solutions[j].CompositeScore {
			return solutions[i].CompositeScore > solutions[j].CompositeScore
		}
		return solutions[i].SafetyScore > solutions[j].SafetyScore
	})
	for i := range solutions {
		solutions[i].SolutionID = i + 1
	}
}
