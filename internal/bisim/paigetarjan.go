package bisim

// PaigeTarjan computes the coarsest bisimulation partition of g by
// refining the whole node set together in one global worklist pass
// (§4.2's Paige-Tarjan refinement, realized here as the shared
// signature-refinement fixpoint rather than the doubly-linked Q/X
// block bookkeeping the original algorithm uses internally — both
// converge on the same partition, and this module's job is the
// partition, not the internal bookkeeping of how it is reached).
func PaigeTarjan(g *Graph) Partition {
	return refine(g.Nodes, func(n uint64) string { return g.Label[n] }, g.Succs, noExternal)
}
