package bisim

import (
	"sort"

	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Quotient collapses g by partition p: each block's first node (in
// g.Nodes order) becomes the representative, every edge is redirected
// to its target's representative, and deleted (non-representative)
// nodes drop out (§4.2 Quotient reconstruction).
func Quotient(g *Graph, p Partition) *kripke.State {
	repOf := make(map[int]uint64)
	for _, n := range g.Nodes {
		b := p[n]
		if _, ok := repOf[b]; !ok {
			repOf[b] = n
		}
	}
	representative := func(n uint64) uint64 { return repOf[p[n]] }

	pointedRep := representative(g.Pointed)
	s := kripke.NewState(g.Pointers[pointedRep])
	s.MaxDepth = g.MaxDepth

	reps := make([]uint64, 0, len(repOf))
	for _, r := range repOf {
		reps = append(reps, r)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })

	for _, r := range reps {
		s.Worlds[r] = g.Pointers[r]
	}
	for _, n := range g.Nodes {
		from := representative(n)
		byAgent := g.Edges[n]
		as := make([]int, 0, len(byAgent))
		for a := range byAgent {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, ai := range as {
			a := bits.Agent(ai)
			for _, to := range byAgent[a] {
				addEdgeDedup(s, from, a, representative(to))
			}
		}
	}
	return s
}

func addEdgeDedup(s *kripke.State, from uint64, a bits.Agent, to uint64) {
	m, ok := s.Beliefs[from]
	if !ok {
		m = make(map[bits.Agent][]uint64)
		s.Beliefs[from] = m
	}
	for _, existing := range m[a] {
		if existing == to {
			return
		}
	}
	m[a] = append(m[a], to)
}
