package pipeline

import "agencydesk/internal/models"

// StageTransitions lists the allowed moves per stage. Every stage can reach
// every other one: the board order is a display convention, not a workflow.
// won/lost are not locked either.
var StageTransitions = buildFullGraph(models.Stages)

func buildFullGraph(stages []models.Stage) map[models.Stage]map[models.Stage]bool {
	table := make(map[models.Stage]map[models.Stage]bool, len(stages))
	for _, from := range stages {
		nexts := make(map[models.Stage]bool, len(stages)-1)
		for _, to := range stages {
			if to != from {
				nexts[to] = true
			}
		}
		table[from] = nexts
	}
	return table
}

// CanTransition reports whether a deal may move from current to to.
// Same-stage moves are not transitions (the board treats them as no-ops).
func CanTransition(current, to models.Stage) bool {
	if !to.Valid() {
		return false
	}
	if current == "" {
		return true
	}
	nexts, ok := StageTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
