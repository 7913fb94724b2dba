// Package search implements the open-list strategies and main engine
// loop of §4.4: BFS/DFS/IDDFS/HeuristicFirst/A* over Kripke states,
// visited-state deduplication, optional per-state bisimulation
// contraction, and a parallel-BFS mode.
package search

import (
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// State is a search-tree node: a pointed Kripke state annotated with
// how the search reached it, so a goal node can reconstruct its plan
// without separate parent bookkeeping (§3 Search state).
type State struct {
	Kripke          *kripke.State
	PlanLength      uint16
	ExecutedActions []bits.ActionID
	// HeuristicValue is only meaningful for HeuristicFirst/A*; a
	// negative value marks the state unreachable-to-goal under the
	// chosen heuristic and excludes it from expansion (§3, §4.3),
	// except for the initial state which always enters regardless.
	HeuristicValue int
}

// key returns the total-order string used for visited-set membership
// (priority-queue ties are broken by insertion order instead), derived from the wrapped Kripke
// state's (pointed, worlds, beliefs) ordering (§3).
func (s *State) key() string {
	return s.Kripke.TotalOrderKey()
}

// successor builds the child state reached by executing act, without
// touching bisimulation or the visited set; the caller is responsible
// for both (engine.go).
func successor(parent *State, next *kripke.State, act bits.ActionID) *State {
	actions := make([]bits.ActionID, len(parent.ExecutedActions)+1)
	copy(actions, parent.ExecutedActions)
	actions[len(parent.ExecutedActions)] = act
	return &State{
		Kripke:          next,
		PlanLength:      parent.PlanLength + 1,
		ExecutedActions: actions,
	}
}
