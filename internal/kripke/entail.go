package kripke

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
)

// EntailsAt evaluates φ at world w in state s, recursively, per §4.1.
func (s *State) EntailsAt(w WorldPointer, f *belief.Formula) bool {
	switch f.Kind {
	case belief.KindEmpty:
		return true
	case belief.KindFluent:
		return f.FF.Entails(w.World.Fluents)
	case belief.KindB:
		for _, w2 := range s.Accessible(w, f.Agent) {
			if !s.EntailsAt(w2, f.Sub[0]) {
				return false
			}
		}
		return true
	case belief.KindE:
		for _, a := range f.Agents {
			for _, w2 := range s.Accessible(w, a) {
				if !s.EntailsAt(w2, f.Sub[0]) {
					return false
				}
			}
		}
		return true
	case belief.KindC:
		for _, w2 := range s.reachableByE(w, f.Agents) {
			if !s.EntailsAt(w2, f.Sub[0]) {
				return false
			}
		}
		return true
	case belief.KindD:
		for _, w2 := range s.reachableByD(w, f.Agents) {
			if !s.EntailsAt(w2, f.Sub[0]) {
				return false
			}
		}
		return true
	case belief.KindProp:
		switch f.Op {
		case belief.OpNot:
			return !s.EntailsAt(w, f.Sub[0])
		case belief.OpAnd:
			return s.EntailsAt(w, f.Sub[0]) && s.EntailsAt(w, f.Sub[1])
		case belief.OpOr:
			return s.EntailsAt(w, f.Sub[0]) || s.EntailsAt(w, f.Sub[1])
		}
	}
	panic("kripke: unreachable formula kind in EntailsAt")
}

// reachableByE returns every world reachable from w by one or more
// E(G,·) hops: the transitive closure used by C's semantics.
func (s *State) reachableByE(w WorldPointer, agents bits.AgentSet) []WorldPointer {
	visited := map[uint64]bool{}
	queue := []WorldPointer{w}
	var out []WorldPointer
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, a := range agents {
			for _, w2 := range s.Accessible(cur, a) {
				if !visited[w2.Key()] {
					visited[w2.Key()] = true
					out = append(out, w2)
					queue = append(queue, w2)
				}
			}
		}
	}
	return out
}

// reachableByD returns every world reachable from w by a single hop
// common to every agent in agents: the intersection of their
// individual one-hop accessibility sets, which is what D's quantifier
// in EntailsAt ranges over.
func (s *State) reachableByD(w WorldPointer, agents bits.AgentSet) []WorldPointer {
	if len(agents) == 0 {
		return nil
	}
	counts := make(map[uint64]int)
	pointers := make(map[uint64]WorldPointer)
	for _, a := range agents {
		for _, w2 := range s.Accessible(w, a) {
			counts[w2.Key()]++
			pointers[w2.Key()] = w2
		}
	}
	var out []WorldPointer
	for k, c := range counts {
		if c == len(agents) {
			out = append(out, pointers[k])
		}
	}
	return out
}

// Entails evaluates φ at the pointed world.
func (s *State) Entails(f *belief.Formula) bool {
	return s.EntailsAt(s.Pointed, f)
}

// EntailsAll evaluates a CNF list: every element must be entailed (§3).
func (s *State) EntailsAll(fs belief.FormulaeList) bool {
	for _, f := range fs {
		if !s.Entails(f) {
			return false
		}
	}
	return true
}
