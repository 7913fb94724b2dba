package search

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/gnnclient"
	"github.com/epistemicgo/episteme/internal/heuristic"
)

// NewScorer adapts a heuristic.Kind into a Scorer closure, threading
// planLength (only consulted by GNN) through from each candidate state
// (§4.3, §4.4).
func NewScorer(kind heuristic.Kind, d *domain.Domain, goal belief.FormulaeList, oracle *gnnclient.Client) Scorer {
	return func(s *State) (int, error) {
		return heuristic.Evaluate(kind, s.Kripke, int(s.PlanLength), d, goal, oracle)
	}
}
