package kripke

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
)

// BuildInitial enumerates the 2^n fluent assignments, discards
// inconsistent ones and those violating the S5 fluent constraints
// derived from `initially`, builds the totally-connected S5 relation,
// then removes edges per the edge-removal initial-condition patterns
// (§4.1 Initial-state construction).
func BuildInitial(store *WorldStore, d *domain.Domain) (*State, error) {
	n := len(d.Fluents)
	if n > 24 {
		return nil, &domain.CoreError{
			Code:    domain.ExitFormulaShapeUnset,
			Message: "kripke: domain has too many fluents to enumerate all assignments (limit 24)",
		}
	}

	constraints := fluentConstraints(d.Initially)

	var worldPointers []WorldPointer
	var pointed *WorldPointer
	for mask := 0; mask < (1 << uint(n)); mask++ {
		lits := make([]bits.Fluent, n)
		for i, f := range d.Fluents {
			if mask&(1<<uint(i)) != 0 {
				lits[i] = f
			} else {
				lits[i] = f.Negate()
			}
		}
		fs := bits.NewFluentsSet(lits...)
		if !fs.Consistent() {
			continue
		}
		if !satisfiesConstraints(fs, constraints) {
			continue
		}
		w, err := store.Intern(fs)
		if err != nil {
			return nil, err
		}
		p := WorldPointer{World: w, Repetition: 0}
		worldPointers = append(worldPointers, p)
		if pointed == nil && satisfiesPointedConditions(fs, d.Initially) {
			found := p
			pointed = &found
		}
	}

	if pointed == nil {
		if len(worldPointers) == 0 {
			return nil, &domain.CoreError{Code: domain.ExitFormulaShapeUnset, Message: "kripke: no world satisfies the domain's initial conditions"}
		}
		pointed = &worldPointers[0]
	}

	s := NewState(*pointed)
	for _, p := range worldPointers {
		s.addWorld(p)
	}
	for _, p1 := range worldPointers {
		for _, a := range d.Agents {
			for _, p2 := range worldPointers {
				s.addEdge(p1, a, p2)
			}
		}
	}

	for _, f := range d.Initially {
		applyEdgeRemoval(s, f, d.Agents)
	}

	return s, nil
}

// fluentConstraints extracts the plain-fluent and C(G, fluent) entries
// of `initially`, which constrain which 2^n assignments are worlds at
// all (the S5 fluent constraint set of §4.1).
func fluentConstraints(initially belief.FormulaeList) []*belief.Formula {
	var out []*belief.Formula
	for _, f := range initially {
		switch f.Kind {
		case belief.KindFluent:
			out = append(out, f)
		case belief.KindC:
			if f.Sub[0].Kind == belief.KindFluent {
				out = append(out, f.Sub[0])
			}
		}
	}
	return out
}

func satisfiesConstraints(fs bits.FluentsSet, constraints []*belief.Formula) bool {
	for _, c := range constraints {
		if !c.FF.Entails(fs) {
			return false
		}
	}
	return true
}

// satisfiesPointedConditions mirrors fluentConstraints but over the
// full `initially` list, used to pick the designated pointed world
// (the same fluent-level constraints determine both membership and
// pointedness in this planner, since `initially` carries no other
// pointed-world-only predicate).
func satisfiesPointedConditions(fs bits.FluentsSet, initially belief.FormulaeList) bool {
	return satisfiesConstraints(fs, fluentConstraints(initially))
}

// applyEdgeRemoval removes, for a C(G, B(a,φ) ∨ ¬B(a,φ)) or
// C(G, ¬B(a,φ) ∧ ¬B(a,¬φ)) entry, every edge of agent a's relation
// connecting a φ-world to a ¬φ-world (§4.1).
func applyEdgeRemoval(s *State, f *belief.Formula, allAgents bits.AgentSet) {
	if f.Kind != belief.KindC {
		return
	}
	inner := f.Sub[0]
	if inner.Kind != belief.KindProp {
		return
	}

	var agent bits.Agent
	var phi *belief.Formula
	switch inner.Op {
	case belief.OpOr:
		l, r := inner.Sub[0], inner.Sub[1]
		if l.Kind == belief.KindB {
			agent, phi = l.Agent, l.Sub[0]
		} else if r.Kind == belief.KindB {
			agent, phi = r.Agent, r.Sub[0]
		} else {
			return
		}
	case belief.OpAnd:
		l, r := inner.Sub[0], inner.Sub[1]
		if l.Kind == belief.KindProp && l.Op == belief.OpNot && l.Sub[0].Kind == belief.KindB {
			agent = l.Sub[0].Agent
			phi = l.Sub[0].Sub[0]
		} else if r.Kind == belief.KindProp && r.Op == belief.OpNot && r.Sub[0].Kind == belief.KindB {
			agent = r.Sub[0].Agent
			phi = r.Sub[0].Sub[0]
		} else {
			return
		}
	default:
		return
	}

	for _, w1key := range s.SortedWorldKeys() {
		w1 := s.Worlds[w1key]
		succs := s.Beliefs[w1key][agent]
		filtered := succs[:0]
		for _, k2 := range succs {
			w2 := s.Worlds[k2]
			if s.EntailsAt(w1, phi) != s.EntailsAt(w2, phi) {
				continue // drop the cross edge
			}
			filtered = append(filtered, k2)
		}
		if s.Beliefs[w1key] == nil {
			s.Beliefs[w1key] = make(map[bits.Agent][]uint64)
		}
		s.Beliefs[w1key][agent] = filtered
	}
}
