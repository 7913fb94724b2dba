// Package bisim implements bisimulation contraction (§4.2): encoding a
// Kripke state as a labelled transition system, reducing it to its
// coarsest bisimilar partition via Paige-Tarjan-equivalent refinement or
// the rank-based fast-bisimulation variant, and reconstructing the
// contracted quotient state.
package bisim

import (
	"sort"

	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Graph is the labelled-transition-system encoding of a kripke.State:
// nodes are world-pointer keys, each carrying an implicit label derived
// from its fluent set (so worlds with different fluents never collapse
// together), and edges are agent-labelled.
type Graph struct {
	Nodes    []uint64
	Label    map[uint64]string
	Pointers map[uint64]kripke.WorldPointer
	Edges    map[uint64]map[bits.Agent][]uint64
	Pointed  uint64
	MaxDepth uint32
}

// Encode builds the bisimulation graph for s. Node order is the state's
// sorted world-key order, so encode/refine/quotient are deterministic.
func Encode(s *kripke.State) *Graph {
	g := &Graph{
		Label:    make(map[uint64]string, len(s.Worlds)),
		Pointers: make(map[uint64]kripke.WorldPointer, len(s.Worlds)),
		Edges:    make(map[uint64]map[bits.Agent][]uint64, len(s.Worlds)),
		Pointed:  s.Pointed.Key(),
		MaxDepth: s.MaxDepth,
	}
	for _, k := range s.SortedWorldKeys() {
		w := s.Worlds[k]
		g.Nodes = append(g.Nodes, k)
		g.Label[k] = w.World.Fluents.Key()
		g.Pointers[k] = w
		byAgent := s.Beliefs[k]
		edges := make(map[bits.Agent][]uint64, len(byAgent))
		for a, succs := range byAgent {
			edges[a] = append([]uint64(nil), succs...)
		}
		g.Edges[k] = edges
	}
	return g
}

// Succs returns g's out-edges of n, keyed by agent.
func (g *Graph) Succs(n uint64) map[bits.Agent][]uint64 {
	return g.Edges[n]
}

// Decode reconstructs a kripke.State isomorphic to the one g was built
// from (used both for the no-refinement round-trip check, and as the
// basis for quotient reconstruction after refinement).
func (g *Graph) Decode() *kripke.State {
	s := kripke.NewState(g.Pointers[g.Pointed])
	s.MaxDepth = g.MaxDepth
	for _, n := range g.Nodes {
		s.Worlds[n] = g.Pointers[n]
	}
	for _, n := range g.Nodes {
		byAgent := g.Edges[n]
		as := make([]int, 0, len(byAgent))
		for a := range byAgent {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, ai := range as {
			a := bits.Agent(ai)
			for _, to := range byAgent[a] {
				s.Beliefs[n] = ensureAgentMap(s.Beliefs[n])
				s.Beliefs[n][a] = append(s.Beliefs[n][a], to)
			}
		}
	}
	return s
}

func ensureAgentMap(m map[bits.Agent][]uint64) map[bits.Agent][]uint64 {
	if m == nil {
		return make(map[bits.Agent][]uint64)
	}
	return m
}
