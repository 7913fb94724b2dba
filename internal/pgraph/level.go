// Package pgraph implements the epistemic planning graph (§4.3): a
// relaxed, monotonic layered reachability structure over fluents and
// belief formulae, used to score states for the heuristic-first and A*
// search strategies.
package pgraph

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// StateLevel is one layer of the planning graph: a score per fluent
// literal and per belief-formula node. A negative score means "not yet
// known"; a non-negative score is the depth of first discovery.
type StateLevel struct {
	FluentScore map[bits.Fluent]int
	BeliefScore map[string]int
	beliefNode  map[string]*belief.Formula
}

func cloneLevel(prev *StateLevel) *StateLevel {
	next := &StateLevel{
		FluentScore: make(map[bits.Fluent]int, len(prev.FluentScore)),
		BeliefScore: make(map[string]int, len(prev.BeliefScore)),
		beliefNode:  prev.beliefNode,
	}
	for f, sc := range prev.FluentScore {
		next.FluentScore[f] = sc
	}
	for k, sc := range prev.BeliefScore {
		next.BeliefScore[k] = sc
	}
	return next
}

// collectSubformulas gathers every belief-formula node reachable from
// the goal and from every action's executability/guard/observability
// formulae, keyed by canonical Key() so structurally equal subformulae
// share one score cell (§4.3 initialization).
func collectSubformulas(d *domain.Domain, goal belief.FormulaeList) map[string]*belief.Formula {
	out := make(map[string]*belief.Formula)
	add := func(f *belief.Formula) {
		if f == nil {
			return
		}
		f.Walk(func(n *belief.Formula) { out[n.Key()] = n })
	}
	for _, f := range goal {
		add(f)
	}
	for _, act := range d.Actions {
		for _, f := range act.Executability {
			add(f)
		}
		for _, e := range act.Effects {
			add(e.Guard)
		}
		for _, g := range act.FullyObservants {
			add(g)
		}
		for _, g := range act.PartiallyObservants {
			add(g)
		}
	}
	return out
}

func newInitialLevel(d *domain.Domain, start *kripke.State, subformulas map[string]*belief.Formula) *StateLevel {
	lvl := &StateLevel{
		FluentScore: make(map[bits.Fluent]int, len(d.Fluents)*2),
		BeliefScore: make(map[string]int, len(subformulas)),
		beliefNode:  subformulas,
	}
	for _, f := range d.Fluents {
		lvl.FluentScore[f] = -1
		lvl.FluentScore[f.Negate()] = -1
		if start.Pointed.World.Fluents.Contains(f) {
			lvl.FluentScore[f] = 0
		} else {
			lvl.FluentScore[f.Negate()] = 0
		}
	}
	for k, f := range subformulas {
		if start.Entails(f) {
			lvl.BeliefScore[k] = 0
		} else {
			lvl.BeliefScore[k] = -1
		}
	}
	return lvl
}

// Holds reports whether f is considered entailed at level: fluent
// leaves consult the known-literal scores, B/E/C/D leaves consult the
// cached belief score (seeded from the start state by newInitialLevel,
// then raised by applyOnticEffects / applyEpistemicEffects during
// expansion), and propositional
// combinators recurse classically (§4.3).
func Holds(level *StateLevel, f *belief.Formula) bool {
	if f == nil {
		return true
	}
	switch f.Kind {
	case belief.KindEmpty:
		return true
	case belief.KindFluent:
		if len(f.FF) == 0 {
			return true
		}
		for _, disj := range f.FF {
			ok := true
			for _, lit := range disj {
				if level.FluentScore[lit] < 0 {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	case belief.KindB, belief.KindE, belief.KindC, belief.KindD:
		sc, ok := level.BeliefScore[f.Key()]
		return ok && sc >= 0
	case belief.KindProp:
		switch f.Op {
		case belief.OpNot:
			return !Holds(level, f.Sub[0])
		case belief.OpAnd:
			return Holds(level, f.Sub[0]) && Holds(level, f.Sub[1])
		case belief.OpOr:
			return Holds(level, f.Sub[0]) || Holds(level, f.Sub[1])
		}
	}
	return false
}

// observantAt collects the agents among guards whose guard formula
// holds at level, the relaxed analogue of kripke's observantSet.
func observantAt(level *StateLevel, guards map[bits.Agent]*belief.Formula) bits.AgentSet {
	var out []bits.Agent
	for a, guard := range guards {
		if Holds(level, guard) {
			out = append(out, a)
		}
	}
	return bits.NewAgentSet(out...)
}

// mentionsAnyAtom reports whether bf contains a fluent leaf whose
// positive atom matches some literal in lits, ignoring polarity — the
// cheap prefilter of §4.3's "whose base fluents intersect the effect".
func mentionsAnyAtom(bf *belief.Formula, lits bits.FluentsSet) bool {
	atoms := make(map[uint32]bool, len(lits))
	for _, l := range lits {
		atoms[l.Atom()] = true
	}
	found := false
	bf.Walk(func(n *belief.Formula) {
		if n.Kind != belief.KindFluent {
			return
		}
		for _, disj := range n.FF {
			for _, lit := range disj {
				if atoms[lit.Atom()] {
					found = true
				}
			}
		}
	})
	return found
}
