package bisim

import "sort"

// tarjanSCC computes strongly connected components of g's underlying
// directed graph (agent labels erased, since rank is a property of
// reachability alone). Returns, for every node, the id of its
// component, and the components in reverse-discovery (i.e. reverse
// topological, sinks of the condensation first) order.
func tarjanSCC(g *Graph) (compOf map[uint64]int, order [][]uint64) {
	index := make(map[uint64]int)
	lowlink := make(map[uint64]int)
	onStack := make(map[uint64]bool)
	var stack []uint64
	next := 0
	compOf = make(map[uint64]int)
	nextComp := 0

	var successors = func(n uint64) []uint64 {
		var out []uint64
		for _, tos := range g.Edges[n] {
			out = append(out, tos...)
		}
		return out
	}

	type frame struct {
		node     uint64
		children []uint64
		ci       int
	}

	var strongconnect func(v uint64)
	strongconnect = func(v uint64) {
		var work []*frame
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		work = append(work, &frame{node: v, children: successors(v)})

		for len(work) > 0 {
			top := work[len(work)-1]
			if top.ci < len(top.children) {
				w := top.children[top.ci]
				top.ci++
				if _, seen := index[w]; !seen {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &frame{node: w, children: successors(w)})
				} else if onStack[w] {
					if index[w] < lowlink[top.node] {
						lowlink[top.node] = index[w]
					}
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if lowlink[top.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[top.node]
				}
			}

			if lowlink[top.node] == index[top.node] {
				var comp []uint64
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					compOf[w] = nextComp
					comp = append(comp, w)
					if w == top.node {
						break
					}
				}
				order = append(order, comp)
				nextComp++
			}
		}
	}

	for _, n := range g.Nodes {
		if _, seen := index[n]; !seen {
			strongconnect(n)
		}
	}
	return compOf, order
}

// computeRank assigns every node a rank per §4.2: well-founded nodes
// (trivial, self-loop-free SCCs) get the smallest even rank greater
// than every rank among their successors outside the SCC;
// non-well-founded nodes (members of a non-trivial SCC, or a
// self-looping singleton) share the smallest such odd rank. SCCs
// are processed in the reverse-discovery order Tarjan's algorithm
// already produces, which is a valid reverse-topological order of the
// condensation, so every successor's rank is known before its
// predecessor's is computed.
func computeRank(g *Graph) map[uint64]int {
	compOf, comps := tarjanSCC(g)
	rank := make(map[uint64]int, len(g.Nodes))
	compRank := make([]int, len(comps))

	hasSelfLoop := func(comp []uint64) bool {
		if len(comp) > 1 {
			return true
		}
		n := comp[0]
		for _, tos := range g.Edges[n] {
			for _, to := range tos {
				if to == n {
					return true
				}
			}
		}
		return false
	}

	for ci, comp := range comps {
		max := -1
		for _, n := range comp {
			for _, tos := range g.Edges[n] {
				for _, to := range tos {
					if compOf[to] == ci {
						continue
					}
					if r := compRank[compOf[to]]; r > max {
						max = r
					}
				}
			}
		}
		base := max + 1
		if hasSelfLoop(comp) {
			if base%2 == 0 {
				base++
			}
		} else {
			if base%2 != 0 {
				base++
			}
		}
		compRank[ci] = base
		for _, n := range comp {
			rank[n] = base
		}
	}
	return rank
}

// ranksAscending returns the distinct ranks present in rank, ascending.
func ranksAscending(rank map[uint64]int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rank {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Ints(out)
	return out
}
