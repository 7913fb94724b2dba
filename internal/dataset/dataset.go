// Package dataset implements §6's dataset dump: for each visited state
// during a dataset run, a hashed DOT (world ids only, no names, for the
// GNN to train on structure alone) and a mapped DOT (fluent/agent names,
// for human inspection) of the world graph, indexed by a monotonically
// increasing counter, plus one goal-formula-tree DOT per run. Grounded
// on the teacher's `output.go` DOT-writer idiom, retargeted here at
// Kripke states via internal/kripke/render.go, with
// github.com/google/uuid naming each run's directory the way the
// teacher's `statemachine.go` mints a `uuid.New()` instance id.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Dumper writes per-state and per-run dataset files under Dir/RunID.
type Dumper struct {
	Dir     string
	RunID   string
	counter int
}

// NewDumper creates a dumper rooted at dir, minting a fresh run id.
func NewDumper(dir string) (*Dumper, error) {
	runID := uuid.NewString()
	full := filepath.Join(dir, runID)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: creating run directory: %w", err)
	}
	return &Dumper{Dir: full, RunID: runID}, nil
}

// DumpState writes the hashed and mapped DOT files for s, indexed by the
// dumper's monotonically increasing counter, returning the index used.
func (d *Dumper) DumpState(s *kripke.State, g *ground.Grounder) (int, error) {
	idx := d.counter
	d.counter++

	hashedPath := filepath.Join(d.Dir, fmt.Sprintf("state_%06d_hashed.dot", idx))
	if err := writeFile(hashedPath, func(f *os.File) error {
		writeHashedDot(f, s)
		return nil
	}); err != nil {
		return idx, err
	}

	mappedPath := filepath.Join(d.Dir, fmt.Sprintf("state_%06d_mapped.dot", idx))
	if err := writeFile(mappedPath, func(f *os.File) error {
		s.WriteAsDot(f, g)
		return nil
	}); err != nil {
		return idx, err
	}

	return idx, nil
}

// writeHashedDot renders s using only world ids as labels (no fluent
// names resolved), the "hashed" counterpart to State.WriteAsDot's named
// rendering, so the GNN trains on graph structure rather than surface
// vocabulary.
func writeHashedDot(w *os.File, s *kripke.State) {
	fmt.Fprintln(w, "digraph {")
	keys := s.SortedWorldKeys()
	for _, k := range keys {
		style := ""
		if k == s.Pointed.Key() {
			style = " [ penwidth=3 ]"
		}
		fmt.Fprintf(w, "  %d%s;\n", k, style)
	}
	for _, k1 := range keys {
		agents := s.Beliefs[k1]
		as := make([]int, 0, len(agents))
		for a := range agents {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, ai := range as {
			succs := append([]uint64(nil), agents[bits.Agent(ai)]...)
			sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
			for _, k2 := range succs {
				fmt.Fprintf(w, "  %d -> %d [ label=%q ];\n", k1, k2, fmt.Sprintf("a%d", ai))
			}
		}
	}
	fmt.Fprintln(w, "}")
}

// DumpGoalTree writes the single per-run goal-formula-tree DOT file,
// one node per AST node of the (conjoined) goal CNF list.
func (d *Dumper) DumpGoalTree(goal belief.FormulaeList, g *ground.Grounder) error {
	path := filepath.Join(d.Dir, "goal_tree.dot")
	return writeFile(path, func(f *os.File) error {
		fmt.Fprintln(f, "digraph {")
		next := 0
		for _, phi := range goal {
			writeFormulaNode(f, phi, g, &next, -1)
		}
		fmt.Fprintln(f, "}")
		return nil
	})
}

func writeFormulaNode(w *os.File, f *belief.Formula, g *ground.Grounder, next *int, parent int) int {
	id := *next
	*next++
	fmt.Fprintf(w, "  n%d [ label=%q ];\n", id, nodeLabel(f, g))
	if parent >= 0 {
		fmt.Fprintf(w, "  n%d -> n%d;\n", parent, id)
	}
	for _, sub := range f.Sub {
		writeFormulaNode(w, sub, g, next, id)
	}
	return id
}

func nodeLabel(f *belief.Formula, g *ground.Grounder) string {
	switch f.Kind {
	case belief.KindEmpty:
		return "TRUE"
	case belief.KindFluent:
		parts := make([]string, 0, len(f.FF))
		for _, fs := range f.FF {
			parts = append(parts, fs.Key())
		}
		return strings.Join(parts, " | ")
	case belief.KindB:
		return fmt.Sprintf("B(%s)", g.AgentName(f.Agent))
	case belief.KindE:
		return "E"
	case belief.KindC:
		return "C"
	case belief.KindD:
		return "D"
	case belief.KindProp:
		switch f.Op {
		case belief.OpNot:
			return "NOT"
		case belief.OpAnd:
			return "AND"
		default:
			return "OR"
		}
	default:
		return "?"
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: creating %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
