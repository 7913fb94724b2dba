package kripke

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/ground"
)

// WriteAsDot renders s as a Graphviz digraph: one node per world pointer
// labeled with its fluent assignment, the pointed world in bold, and one
// edge per (world, agent, world) triple labeled with the agent's name.
func (s *State) WriteAsDot(w io.Writer, g *ground.Grounder) {
	_, _ = fmt.Fprintln(w, "digraph {")
	for _, k := range s.SortedWorldKeys() {
		wp := s.Worlds[k]
		_, _ = fmt.Fprintf(w, "  %d [ label=%q ];\n", k, worldLabel(wp, g))
		if k == s.Pointed.Key() {
			_, _ = fmt.Fprintf(w, "  %d [ penwidth=3 ];\n", k)
		}
	}
	for _, k1 := range s.SortedWorldKeys() {
		agents := s.Beliefs[k1]
		as := make([]int, 0, len(agents))
		for a := range agents {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, ai := range as {
			a := bits.Agent(ai)
			succs := append([]uint64(nil), agents[a]...)
			sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
			for _, k2 := range succs {
				_, _ = fmt.Fprintf(w, "  %d -> %d [ label=%q ];\n", k1, k2, g.AgentName(a))
			}
		}
	}
	_, _ = fmt.Fprintln(w, "}")
}

func worldLabel(wp WorldPointer, g *ground.Grounder) string {
	names := make([]string, 0, len(wp.World.Fluents))
	for _, f := range wp.World.Fluents {
		names = append(names, g.FluentName(f))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// WorldJSON is the serializable form of a single world, used by ToJSON
// and WriteAsJSON.
type WorldJSON struct {
	ID       uint64   `json:"id"`
	Pointed  bool     `json:"pointed"`
	Fluents  []string `json:"fluents"`
	MaxDepth uint32   `json:"max_depth,omitempty"`
}

// EdgeJSON is one accessibility-relation edge.
type EdgeJSON struct {
	From  uint64 `json:"from"`
	Agent string `json:"agent"`
	To    uint64 `json:"to"`
}

// StateJSON is the full serializable state, keys sorted for determinism.
type StateJSON struct {
	Worlds []WorldJSON `json:"worlds"`
	Edges  []EdgeJSON  `json:"edges"`
}

// ToJSON builds the serializable projection of s.
func (s *State) ToJSON(g *ground.Grounder) StateJSON {
	sj := StateJSON{}
	for _, k := range s.SortedWorldKeys() {
		wp := s.Worlds[k]
		names := make([]string, 0, len(wp.World.Fluents))
		for _, f := range wp.World.Fluents {
			names = append(names, g.FluentName(f))
		}
		sort.Strings(names)
		sj.Worlds = append(sj.Worlds, WorldJSON{
			ID:      k,
			Pointed: k == s.Pointed.Key(),
			Fluents: names,
		})
	}
	for _, k1 := range s.SortedWorldKeys() {
		agents := s.Beliefs[k1]
		as := make([]int, 0, len(agents))
		for a := range agents {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, ai := range as {
			a := bits.Agent(ai)
			succs := append([]uint64(nil), agents[a]...)
			sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
			for _, k2 := range succs {
				sj.Edges = append(sj.Edges, EdgeJSON{From: k1, Agent: g.AgentName(a), To: k2})
			}
		}
	}
	return sj
}

// WriteAsJSON writes s's JSON projection with indentation; the GNN
// oracle client uses it for the state file it hands to the oracle.
func (s *State) WriteAsJSON(w io.Writer, g *ground.Grounder) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ToJSON(g))
}
