package search

import (
	"fmt"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Graph is the explicit-state search graph temporal rules are checked
// against: every Kripke state reached by applying grounded actions from
// an initial state, up to an optional cap, plus the action-successor
// relation between them. This plays the role of the teacher's
// whole-model transition graph, except the nodes here are search
// states rather than single worlds, since epistemic properties are
// evaluated at a state's pointed world (§4.1, §4.4).
type Graph struct {
	Nodes   map[string]*kripke.State
	Edges   map[string][]string
	Initial string
}

// BuildGraph explores the reachable search-state graph breadth-first,
// stopping once maxStates distinct states have been discovered
// (maxStates <= 0 means unbounded); this mirrors the teacher's full
// model exploration (`Solve()`/`checkTemporalRules`) bounded for use on
// planning domains that need not be finite.
func BuildGraph(initial *kripke.State, d *domain.Domain, store *kripke.WorldStore, allAgents bits.AgentSet, maxStates int) *Graph {
	g := &Graph{Nodes: map[string]*kripke.State{}, Edges: map[string][]string{}}
	startKey := initial.TotalOrderKey()
	g.Nodes[startKey] = initial
	g.Initial = startKey

	queue := []*kripke.State{initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curKey := cur.TotalOrderKey()

		for _, act := range d.Actions {
			if !act.ExecutableAt(cur.Entails) {
				continue
			}
			next, err := cur.Apply(store, act, allAgents)
			if err != nil {
				// A non-executable-action error cannot happen here
				// (ExecutableAt already gated it); any other error is a
				// domain-construction defect the exploration cannot
				// repair, so the edge is simply skipped rather than
				// aborting the whole graph.
				continue
			}
			nextKey := next.TotalOrderKey()
			g.Edges[curKey] = append(g.Edges[curKey], nextKey)
			if _, seen := g.Nodes[nextKey]; seen {
				continue
			}
			if maxStates > 0 && len(g.Nodes) >= maxStates {
				continue
			}
			g.Nodes[nextKey] = next
			queue = append(queue, next)
		}
	}
	return g
}

// StateAt returns the search state stored under key, for lasso rendering.
func (g *Graph) StateAt(key string) *kripke.State { return g.Nodes[key] }

// succs returns key's successors, treating a dead end (no executable
// action) as a self-loop so a finite exploration still yields a
// well-defined infinite path for LTL purposes, the same convention
// ltl.go's checkBA uses for terminal worlds.
func (g *Graph) succs(key string) []string {
	s := g.Edges[key]
	if len(s) == 0 {
		return []string{key}
	}
	return s
}

func (g *Graph) label(key string, f *belief.Formula) bool {
	return g.Nodes[key].Entails(f)
}

// Lasso is a counterexample: a finite prefix followed by a cycle that
// repeats forever, both given as search-graph node keys (§ teacher's
// `Lasso`/`TemporalResult`).
type Lasso struct {
	Prefix []string
	Loop   []string
}

// TemporalResult reports whether a rule holds, with a lasso
// counterexample when it does not. A failing rule does not fail the
// plan search; it is reported alongside it (§D).
type TemporalResult struct {
	Rule  string
	Holds bool
	Lasso *Lasso
}

// Rule is a temporal property checkable against a Graph. Instances are
// only ever built through WheneverPEventuallyQ/EventuallyAlways/
// AlwaysEventually so evaluate stays unexported.
type Rule interface {
	Name() string
	evaluate(g *Graph, a *analysis) (bool, *Lasso)
}

// analysis is the once-per-graph precomputation every rule's evaluate
// needs: a BFS parent tree from the initial node (for prefix
// reconstruction) and the SCC decomposition (for cycle search).
type analysis struct {
	parents  map[string]string
	sccs     [][]string
	sccIndex map[string]int
}

func newAnalysis(g *Graph) *analysis {
	parents := bfsParents(g)
	sccs, idx := tarjanSCC(g)
	return &analysis{parents: parents, sccs: sccs, sccIndex: idx}
}

func bfsParents(g *Graph) map[string]string {
	parents := map[string]string{g.Initial: g.Initial}
	queue := []string{g.Initial}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range g.succs(v) {
			if _, ok := parents[u]; !ok {
				parents[u] = v
				queue = append(queue, u)
			}
		}
	}
	return parents
}

// tarjanSCC computes the strongly-connected-component decomposition of
// the graph reachable from g.Initial, iteratively (an explicit work
// stack rather than recursion, consistent with internal/bisim/rank.go)
// to avoid recursion-depth limits on large explored graphs.
func tarjanSCC(g *Graph) ([][]string, map[string]int) {
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var sccs [][]string

	type frame struct {
		v        string
		succs    []string
		succIdx  int
	}

	var work []*frame
	visit := func(start string) {
		if _, ok := indices[start]; ok {
			return
		}
		work = append(work, &frame{v: start, succs: g.succs(start)})
		indices[start] = index
		lowlink[start] = index
		index++
		stack = append(stack, start)
		onStack[start] = true

		for len(work) > 0 {
			top := work[len(work)-1]
			if top.succIdx < len(top.succs) {
				w := top.succs[top.succIdx]
				top.succIdx++
				if _, ok := indices[w]; !ok {
					indices[w] = index
					lowlink[w] = index
					index++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &frame{v: w, succs: g.succs(w)})
					continue
				} else if onStack[w] && indices[w] < lowlink[top.v] {
					lowlink[top.v] = indices[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if lowlink[top.v] < lowlink[parent.v] {
					lowlink[parent.v] = lowlink[top.v]
				}
			}
			if lowlink[top.v] == indices[top.v] {
				var comp []string
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					comp = append(comp, w)
					if w == top.v {
						break
					}
				}
				sccs = append(sccs, comp)
			}
		}
	}
	visit(g.Initial)

	idx := map[string]int{}
	for i, comp := range sccs {
		for _, k := range comp {
			idx[k] = i
		}
	}
	return sccs, idx
}

func hasCycle(g *Graph, comp []string) bool {
	if len(comp) > 1 {
		return true
	}
	k := comp[0]
	for _, n := range g.succs(k) {
		if n == k {
			return true
		}
	}
	return false
}

func buildPath(target string, parents map[string]string) []string {
	var path []string
	cur := target
	for {
		path = append([]string{cur}, path...)
		parent := parents[cur]
		if parent == cur {
			break
		}
		cur = parent
	}
	return path
}

func buildLoop(g *Graph, start string, comp []string) []string {
	set := map[string]bool{}
	for _, n := range comp {
		set[n] = true
	}
	loop := []string{start}
	cur := start
	visited := map[string]bool{}
	for {
		visited[cur] = true
		advanced := false
		for _, nxt := range g.succs(cur) {
			if !set[nxt] {
				continue
			}
			loop = append(loop, nxt)
			cur = nxt
			advanced = true
			if nxt == start || visited[nxt] {
				return loop
			}
			break
		}
		if !advanced {
			return loop
		}
	}
}

// CheckRules evaluates every rule against g, reporting a lasso
// counterexample for each that fails. A failing rule is advisory; the
// caller decides what, if anything, to do with the result (§D).
func CheckRules(g *Graph, rules []Rule) []TemporalResult {
	if len(rules) == 0 {
		return nil
	}
	a := newAnalysis(g)
	results := make([]TemporalResult, 0, len(rules))
	for _, r := range rules {
		holds, lasso := r.evaluate(g, a)
		results = append(results, TemporalResult{Rule: r.Name(), Holds: holds, Lasso: lasso})
	}
	return results
}

// wheneverPEventuallyQ is G(p -> F q): whenever p holds, q eventually
// holds afterward.
type wheneverPEventuallyQ struct {
	p, q *belief.Formula
	name string
}

func (r wheneverPEventuallyQ) Name() string { return r.name }

func (r wheneverPEventuallyQ) evaluate(g *Graph, a *analysis) (bool, *Lasso) {
	qless := map[int]bool{}
	for i, comp := range a.sccs {
		if !hasCycle(g, comp) {
			continue
		}
		allNotQ := true
		for _, k := range comp {
			if g.label(k, r.q) {
				allNotQ = false
				break
			}
		}
		if allNotQ {
			qless[i] = true
		}
	}

	for k := range g.Nodes {
		if !g.label(k, r.p) {
			continue
		}
		queue := []string{k}
		parents := map[string]string{k: k}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if qless[a.sccIndex[v]] {
				prefixToK := buildPath(k, a.parents)
				pathFromK := buildPath(v, parents)
				prefix := append(prefixToK, pathFromK[1:]...)
				comp := a.sccs[a.sccIndex[v]]
				loop := buildLoop(g, v, comp)
				return false, &Lasso{Prefix: prefix, Loop: loop}
			}
			for _, u := range g.succs(v) {
				if g.label(u, r.q) {
					continue
				}
				if _, seen := parents[u]; !seen {
					parents[u] = v
					queue = append(queue, u)
				}
			}
		}
	}
	return true, nil
}

// WheneverPEventuallyQ returns a rule requiring that whenever p holds, q
// eventually holds.
func WheneverPEventuallyQ(p, q *belief.Formula) Rule {
	return wheneverPEventuallyQ{p: p, q: q, name: fmt.Sprintf("whenever %s eventually %s", p.Key(), q.Key())}
}

// eventuallyAlways is F G c: c eventually holds forever.
type eventuallyAlways struct {
	c    *belief.Formula
	name string
}

func (r eventuallyAlways) Name() string { return r.name }

func (r eventuallyAlways) evaluate(g *Graph, a *analysis) (bool, *Lasso) {
	for _, comp := range a.sccs {
		allC := true
		for _, k := range comp {
			if !g.label(k, r.c) {
				allC = false
				break
			}
		}
		if allC {
			return true, nil
		}
	}
	for _, comp := range a.sccs {
		if !hasCycle(g, comp) {
			continue
		}
		for _, k := range comp {
			if !g.label(k, r.c) {
				prefix := buildPath(k, a.parents)
				loop := buildLoop(g, k, comp)
				return false, &Lasso{Prefix: prefix, Loop: loop}
			}
		}
	}
	return false, nil
}

// EventuallyAlways returns a rule requiring that c eventually holds
// forever.
func EventuallyAlways(c *belief.Formula) Rule {
	return eventuallyAlways{c: c, name: fmt.Sprintf("eventually always %s", c.Key())}
}

// alwaysEventually is G F c: c holds infinitely often.
type alwaysEventually struct {
	c    *belief.Formula
	name string
}

func (r alwaysEventually) Name() string { return r.name }

func (r alwaysEventually) evaluate(g *Graph, a *analysis) (bool, *Lasso) {
	for _, comp := range a.sccs {
		if !hasCycle(g, comp) {
			continue
		}
		allNotC := true
		for _, k := range comp {
			if g.label(k, r.c) {
				allNotC = false
				break
			}
		}
		if allNotC {
			start := comp[0]
			prefix := buildPath(start, a.parents)
			loop := buildLoop(g, start, comp)
			return false, &Lasso{Prefix: prefix, Loop: loop}
		}
	}
	return true, nil
}

// AlwaysEventually returns a rule requiring that c holds infinitely often.
func AlwaysEventually(c *belief.Formula) Rule {
	return alwaysEventually{c: c, name: fmt.Sprintf("always eventually %s", c.Key())}
}
