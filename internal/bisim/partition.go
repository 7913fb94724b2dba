package bisim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/epistemicgo/episteme/internal/bits"
)

// Partition maps every node to its block id, the current candidate
// bisimulation classes.
type Partition map[uint64]int

// external looks up the block id of a node outside the node set being
// refined (already fixed by a previous rank, for the fast-bisimulation
// caller) and reports whether it found one.
type external func(n uint64) (int, bool)

// noExternal is used by the whole-graph Paige-Tarjan-equivalent call,
// where every node is refined together and nothing is pre-fixed.
func noExternal(uint64) (int, bool) { return 0, false }

// refine is the shared partition-refinement fixpoint underlying both
// PaigeTarjan (called once, over the whole graph, with noExternal) and
// FastBisimulation (called once per rank, with external resolving
// lower-rank neighbours already assigned a final block). Both callers
// converge to the same coarsest stable partition: refine only ever
// splits blocks, it never merges two already-separated nodes, so
// repeated signature refinement over a finite node set is guaranteed to
// reach a fixpoint, and that fixpoint is exactly the bisimulation
// partition (two nodes share a block iff every refinement round agreed
// they were behaviourally indistinguishable).
func refine(nodes []uint64, label func(uint64) string, succs func(uint64) map[bits.Agent][]uint64, ext external) Partition {
	block := make(Partition, len(nodes))
	labelToBlock := make(map[string]int)
	for _, n := range nodes {
		lbl := label(n)
		id, ok := labelToBlock[lbl]
		if !ok {
			id = len(labelToBlock)
			labelToBlock[lbl] = id
		}
		block[n] = id
	}

	blockOf := func(n uint64) int {
		if id, ok := block[n]; ok {
			return id
		}
		if id, ok := ext(n); ok {
			// External blocks map below -1 so they never collide with
			// this call's own block ids.
			return -2 - id
		}
		return -1
	}

	for {
		sigToBlock := make(map[string]int)
		newBlock := make(Partition, len(nodes))
		changed := false
		for _, n := range nodes {
			sig := signature(blockOf, succs(n))
			key := strconv.Itoa(block[n]) + "#" + sig
			id, ok := sigToBlock[key]
			if !ok {
				id = len(sigToBlock)
				sigToBlock[key] = id
			}
			newBlock[n] = id
			if id != block[n] {
				changed = true
			}
		}
		block = newBlock
		if !changed {
			break
		}
	}
	return block
}

// signature builds a canonical string summarizing, per agent, the
// sorted multiset of target-block ids reachable from a node — two
// nodes have the same signature iff they are indistinguishable by one
// more step of every agent's relation, given the current partition.
func signature(blockOf func(uint64) int, edges map[bits.Agent][]uint64) string {
	agents := make([]int, 0, len(edges))
	for a := range edges {
		agents = append(agents, int(a))
	}
	sort.Ints(agents)

	var b strings.Builder
	for _, ai := range agents {
		a := bits.Agent(ai)
		targets := make([]int, 0, len(edges[a]))
		for _, to := range edges[a] {
			targets = append(targets, blockOf(to))
		}
		sort.Ints(targets)
		b.WriteString(strconv.Itoa(ai))
		b.WriteByte(':')
		for _, t := range targets {
			b.WriteString(strconv.Itoa(t))
			b.WriteByte(',')
		}
		b.WriteByte(';')
	}
	return b.String()
}
