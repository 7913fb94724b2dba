// Package heuristic dispatches among the five scoring strategies of
// §4.3 that drive HeuristicFirst and A* search: the cheap SUBGOALS
// count, the three planning-graph-derived scores, and the external GNN
// oracle.
package heuristic

import (
	"fmt"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/gnnclient"
	"github.com/epistemicgo/episteme/internal/kripke"
	"github.com/epistemicgo/episteme/internal/pgraph"
)

// Kind names one of the five heuristic strategies.
type Kind string

const (
	Subgoals Kind = "SUBGOALS"
	LPG      Kind = "L_PG"
	SPG      Kind = "S_PG"
	CPG      Kind = "C_PG"
	GNN      Kind = "GNN"
)

// ParseKind validates a CLI/config-supplied heuristic name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Subgoals, LPG, SPG, CPG, GNN:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("heuristic: unknown heuristic %q", s)
	}
}

// Evaluate scores state under kind. planLength and the oracle client
// are only consulted by GNN; d and goal are only consulted by the
// planning-graph-derived kinds. A negative result means "goal not
// reachable under the relaxation" and the caller should exclude the
// state from expansion (§4.3).
func Evaluate(kind Kind, state *kripke.State, planLength int, d *domain.Domain, goal belief.FormulaeList, oracle *gnnclient.Client) (int, error) {
	switch kind {
	case Subgoals:
		return pgraph.Subgoals(state, goal), nil
	case LPG:
		return pgraph.LPG(pgraph.Build(state, d, goal)), nil
	case SPG:
		return pgraph.SPG(pgraph.Build(state, d, goal)), nil
	case CPG:
		return pgraph.CPG(pgraph.Build(state, d, goal)), nil
	case GNN:
		if oracle == nil {
			return 0, fmt.Errorf("heuristic: GNN selected but no oracle client configured")
		}
		return oracle.Evaluate(state, planLength, d.Grounder)
	default:
		return 0, fmt.Errorf("heuristic: unknown heuristic kind %q", kind)
	}
}
