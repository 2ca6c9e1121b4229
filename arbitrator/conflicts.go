package arbitrator

import (
	"strings"

	"github.com/airline-ops/recovery-orchestrator/model"
)

// conflictingActions lists pairs of operational actions treated as
// mutually exclusive when two analyzers each favor one side of a pair.
// conservatism ranks the actions from most to least conservative, used
// to resolve safety_vs_safety conflicts in favor of the more cautious
// side.
var conservatism = map[string]int{
	"cancel":  4,
	"divert":  3,
	"delay":   2,
	"reroute": 2,
	"proceed": 1,
	"depart":  1,
	"continue": 1,
}

var conflictingActions = [][2]string{
	{"cancel", "proceed"},
	{"divert", "continue"},
	{"delay", "depart"},
	{"delay", "proceed"},
	{"cancel", "depart"},
}

// actionsIn returns every conflict-table action keyword present in text
// (case-insensitive substring match).
func actionsIn(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for action := range conservatism {
		if strings.Contains(lower, action) {
			found = append(found, action)
		}
	}
	return found
}

func conflicts(a, b string) (string, string, bool) {
	actionsA, actionsB := actionsIn(a), actionsIn(b)
	for _, pair := range conflictingActions {
		hasA0, hasA1 := contains(actionsA, pair[0]), contains(actionsA, pair[1])
		hasB0, hasB1 := contains(actionsB, pair[0]), contains(actionsB, pair[1])
		if hasA0 && hasB1 {
			return pair[0], pair[1], true
		}
		if hasA1 && hasB0 {
			return pair[1], pair[0], true
		}
	}
	return "", "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func moreConservative(a, b string) string {
	if conservatism[a] >= conservatism[b] {
		return a
	}
	return b
}

// DetectConflicts scans phase2's analyzer positions for three
// conflict shapes, each via a conservative keyword-
// overlap heuristic (the same "trust the model's structured text, apply
// a deterministic check" idiom used by the candidate solution filter):
// safety_vs_business (a safety binding constraint rules out a business
// recommendation), safety_vs_safety (two safety analyzers favor
// mutually exclusive actions — resolved toward the more conservative),
// and business_vs_business (two business analyzers favor mutually
// exclusive actions — resolution left to the Arbitrator's ranking).
func DetectConflicts(phase2 *model.Collation) ([]model.ConflictDetail, []model.ResolutionDetail, []model.SafetyOverride) {
	var conflictsOut []model.ConflictDetail
	var resolutions []model.ResolutionDetail
	var overrides []model.SafetyOverride

	for _, safetyAgent := range model.SafetyAgents {
		safetyResp, ok := phase2.Responses[safetyAgent]
		if !ok || len(safetyResp.BindingConstraints) == 0 {
			continue
		}
		for _, constraint := range safetyResp.BindingConstraints {
			for _, businessAgent := range model.BusinessAgents {
				businessResp, ok := phase2.Responses[businessAgent]
				if !ok || businessResp.Recommendation == "" {
					continue
				}
				if safetyAction, businessAction, hit := conflicts(constraint, businessResp.Recommendation); hit {
					conflictsOut = append(conflictsOut, model.ConflictDetail{
						AgentsInvolved: []model.AgentName{safetyAgent, businessAgent},
						ConflictType:   model.ConflictSafetyVsBusiness,
						Description:    constraint + " rules out: " + businessResp.Recommendation,
					})
					resolutions = append(resolutions, model.ResolutionDetail{
						ConflictType: model.ConflictSafetyVsBusiness,
						Resolution:   "binding safety constraint takes precedence",
						FavoredAgent: safetyAgent,
					})
					overrides = append(overrides, model.SafetyOverride{
						Agent:           safetyAgent,
						Constraint:      constraint,
						OverriddenAgent: businessAgent,
						Description:     safetyAction + " overrides " + businessAction,
					})
				}
			}
		}
	}

	for i, agentA := range model.SafetyAgents {
		respA, ok := phase2.Responses[agentA]
		if !ok || len(respA.BindingConstraints) == 0 {
			continue
		}
		for _, agentB := range model.SafetyAgents[i+1:] {
			respB, ok := phase2.Responses[agentB]
			if !ok || len(respB.BindingConstraints) == 0 {
				continue
			}
			for _, ca := range respA.BindingConstraints {
				for _, cb := range respB.BindingConstraints {
					if actionA, actionB, hit := conflicts(ca, cb); hit {
						conflictsOut = append(conflictsOut, model.ConflictDetail{
							AgentsInvolved: []model.AgentName{agentA, agentB},
							ConflictType:   model.ConflictSafetyVsSafety,
							Description:    ca + " conflicts with " + cb,
						})
						favored := agentA
						if moreConservative(actionA, actionB) == actionB {
							favored = agentB
						}
						resolutions = append(resolutions, model.ResolutionDetail{
							ConflictType: model.ConflictSafetyVsSafety,
							Resolution:   "resolved toward the more conservative constraint",
							FavoredAgent: favored,
						})
					}
				}
			}
		}
	}

	for i, agentA := range model.BusinessAgents {
		respA, ok := phase2.Responses[agentA]
		if !ok || respA.Recommendation == "" {
			continue
		}
		for _, agentB := range model.BusinessAgents[i+1:] {
			respB, ok := phase2.Responses[agentB]
			if !ok || respB.Recommendation == "" {
				continue
			}
			if _, _, hit := conflicts(respA.Recommendation, respB.Recommendation); hit {
				conflictsOut = append(conflictsOut, model.ConflictDetail{
					AgentsInvolved: []model.AgentName{agentA, agentB},
					ConflictType:   model.ConflictBusinessVsBusiness,
					Description:    respA.Recommendation + " vs " + respB.Recommendation,
				})
				resolutions = append(resolutions, model.ResolutionDetail{
					ConflictType: model.ConflictBusinessVsBusiness,
					Resolution:   "both trade-offs preserved as distinct candidate solutions; ranking decides",
				})
			}
		}
	}

	return conflictsOut, resolutions, overrides
}
