package bisim

// FastBisimulation computes the coarsest bisimulation partition of g
// using the rank-based strategy of §4.2: nodes are grouped by rank,
// and each rank is refined (via the same shared fixpoint PaigeTarjan
// uses) against the already-finalized blocks of lower ranks, which act
// as splitters for higher ranks. A rank holding a single node needs no
// internal refinement and gets its own singleton block directly.
func FastBisimulation(g *Graph) Partition {
	rank := computeRank(g)
	nodesByRank := make(map[int][]uint64)
	for _, n := range g.Nodes {
		r := rank[n]
		nodesByRank[r] = append(nodesByRank[r], n)
	}

	final := make(Partition, len(g.Nodes))
	nextID := 0

	for _, r := range ranksAscending(rank) {
		nodes := nodesByRank[r]
		if len(nodes) == 1 {
			final[nodes[0]] = nextID
			nextID++
			continue
		}

		lowerBlock := func(n uint64) (int, bool) {
			id, ok := final[n]
			return id, ok
		}
		local := refine(nodes, func(n uint64) string { return g.Label[n] }, g.Succs, lowerBlock)

		offsetForLocal := make(map[int]int)
		for _, n := range nodes {
			lid := local[n]
			gid, ok := offsetForLocal[lid]
			if !ok {
				gid = nextID
				nextID++
				offsetForLocal[lid] = gid
			}
			final[n] = gid
		}
	}
	return final
}
