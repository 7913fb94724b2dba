package pgraph

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Graph is the built epistemic planning graph, the alternating
// state/action levels of §4.3, plus the derived heuristic outputs.
type Graph struct {
	Levels       []*StateLevel
	ActionLevels [][]*domain.Action
	SubgoalDepth map[string]int
	PgLength     int
	PgSum        int
	Satisfiable  bool
}

// Build expands the planning graph from start until every goal
// subformula is entailed (satisfiable) or a fixpoint is reached with no
// new belief formula or action discovered (unsatisfiable under the
// relaxation).
func Build(start *kripke.State, d *domain.Domain, goal belief.FormulaeList) *Graph {
	subformulas := collectSubformulas(d, goal)
	g := &Graph{
		Levels:       []*StateLevel{newInitialLevel(d, start, subformulas)},
		SubgoalDepth: make(map[string]int, len(goal)),
	}

	notYet := append([]*domain.Action(nil), d.Actions...)
	maxDepth := len(d.Actions) + len(subformulas) + 2

	for depth := 0; ; depth++ {
		cur := g.Levels[depth]

		allTrue := true
		for _, gf := range goal {
			key := gf.Key()
			if _, seen := g.SubgoalDepth[key]; seen {
				continue
			}
			if Holds(cur, gf) {
				g.SubgoalDepth[key] = depth
				g.PgSum += depth
			} else {
				allTrue = false
			}
		}
		if allTrue {
			g.PgLength = depth
			g.Satisfiable = true
			return g
		}
		if depth >= maxDepth {
			g.Satisfiable = false
			return g
		}

		var levelActions, stillNotYet []*domain.Action
		for _, act := range notYet {
			if act.ExecutableAt(func(f *belief.Formula) bool { return Holds(cur, f) }) {
				levelActions = append(levelActions, act)
			} else {
				stillNotYet = append(stillNotYet, act)
			}
		}
		g.ActionLevels = append(g.ActionLevels, levelActions)
		notYet = stillNotYet

		next := cloneLevel(cur)
		changed := len(levelActions) > 0

		for _, act := range levelActions {
			fully := observantAt(cur, act.FullyObservants)
			if act.Type == domain.Ontic {
				changed = expandOntic(cur, next, act, fully, subformulas, depth+1) || changed
				continue
			}
			partially := observantAt(cur, act.PartiallyObservants)
			changed = expandEpistemic(cur, next, act, fully, partially, subformulas, depth+1) || changed
		}

		if !changed {
			g.Satisfiable = false
			return g
		}
		g.Levels = append(g.Levels, next)
	}
}

func expandOntic(cur, next *StateLevel, act *domain.Action, fully bits.AgentSet, subformulas map[string]*belief.Formula, depth int) bool {
	changed := false
	var lits []bits.Fluent
	for _, e := range act.Effects {
		if Holds(cur, e.Guard) {
			lits = append(lits, e.Postcondition.Only()...)
		}
	}
	effect := bits.NewFluentsSet(lits...)
	for _, lit := range effect {
		if next.FluentScore[lit] < 0 {
			next.FluentScore[lit] = depth
			changed = true
		}
	}
	for k, bf := range subformulas {
		if next.BeliefScore[k] >= 0 {
			continue
		}
		if !mentionsAnyAtom(bf, effect) {
			continue
		}
		if applyOnticEffects(next, bf, fully) {
			next.BeliefScore[k] = depth
			changed = true
		}
	}
	return changed
}

func expandEpistemic(cur, next *StateLevel, act *domain.Action, fully, partially bits.AgentSet, subformulas map[string]*belief.Formula, depth int) bool {
	changed := false
	for _, e := range act.Effects {
		if !Holds(cur, e.Guard) {
			continue
		}
		for _, lit := range e.Postcondition.Only() {
			for k, bf := range subformulas {
				if next.BeliefScore[k] >= 0 {
					continue
				}
				if applyEpistemicEffects(next, lit, bf, fully, partially, 0) {
					next.BeliefScore[k] = depth
					changed = true
				}
			}
		}
	}
	return changed
}

// LPG returns the L_PG heuristic: the depth at which the goal first
// becomes entailed, or -1 if unreachable under the relaxation.
func LPG(g *Graph) int {
	if !g.Satisfiable {
		return -1
	}
	return g.PgLength
}

// SPG returns the S_PG heuristic: the sum of per-subgoal first-true depths.
func SPG(g *Graph) int {
	if !g.Satisfiable {
		return -1
	}
	return g.PgSum
}

// CPG returns the C_PG heuristic: a normalized inverse built from the
// final level's per-fluent/per-formula scores against the graph's
// maximum depth (unknown items are charged the max-score penalty).
func CPG(g *Graph) int {
	if !g.Satisfiable {
		return -1
	}
	maxScore := len(g.Levels) - 1
	if maxScore <= 0 {
		return 0
	}
	final := g.Levels[len(g.Levels)-1]
	var total, count int
	for _, sc := range final.FluentScore {
		count++
		if sc < 0 {
			total += maxScore
		} else {
			total += sc
		}
	}
	for _, sc := range final.BeliefScore {
		count++
		if sc < 0 {
			total += maxScore
		} else {
			total += sc
		}
	}
	if count == 0 {
		return 0
	}
	return total / count
}

// Subgoals returns the SUBGOALS heuristic: the count of goal formulae
// not entailed by state, computed without building a planning graph.
func Subgoals(state *kripke.State, goal belief.FormulaeList) int {
	n := 0
	for _, f := range goal {
		if !state.Entails(f) {
			n++
		}
	}
	return n
}
