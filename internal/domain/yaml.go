package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/ground"
)

// fileSpec mirrors the on-disk YAML shape described in §6:
// fluents/agents are flat name lists, actions/initially/goal use the
// structured formula-node encoding compiled by compileFormula.
type fileSpec struct {
	Fluents []string     `yaml:"fluents"`
	Agents  []string     `yaml:"agents"`
	Actions []actionSpec `yaml:"actions"`
	Initially []yaml.Node `yaml:"initially"`
	Goal      []yaml.Node `yaml:"goal"`
}

type actionSpec struct {
	Name                string            `yaml:"name"`
	Type                string            `yaml:"type"`
	Executability       []yaml.Node       `yaml:"executability"`
	Effects             []effectSpec      `yaml:"effects"`
	FullyObservant      []observerSpec    `yaml:"fully_observant"`
	PartiallyObservant  []observerSpec    `yaml:"partially_observant"`
}

type effectSpec struct {
	Postcondition [][]string `yaml:"postcondition"`
	Guard         *yaml.Node `yaml:"guard"`
}

type observerSpec struct {
	Agent string     `yaml:"agent"`
	Guard *yaml.Node `yaml:"guard"`
}

// Load reads and compiles a domain file at path (§6 Domain input).
func Load(path string) (*Domain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &CoreError{Code: ExitDomainFileOpen, Message: fmt.Sprintf("domain: cannot open %s: %v", path, err)}
	}
	return LoadBytes(raw)
}

// LoadBytes compiles a domain file already read into memory; exposed
// separately so tests and the dataset tooling can build a Domain from
// an in-memory fixture without touching the filesystem.
func LoadBytes(raw []byte) (*Domain, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, &CoreError{Code: ExitDomainFileOpen, Message: fmt.Sprintf("domain: invalid YAML: %v", err)}
	}

	g := ground.New()
	for _, name := range spec.Fluents {
		g.AddFluent(name)
	}
	for _, name := range spec.Agents {
		g.AddAgent(name)
	}
	for _, as := range spec.Actions {
		g.AddAction(as.Name)
	}

	d := &Domain{Grounder: g}
	for _, f := range spec.Fluents {
		fl, err := g.Fluent(f)
		if err != nil {
			return nil, err
		}
		d.Fluents = append(d.Fluents, fl)
	}
	for _, a := range spec.Agents {
		ag, err := g.Agent(a)
		if err != nil {
			return nil, err
		}
		d.Agents = append(d.Agents, ag)
	}

	for _, as := range spec.Actions {
		act, err := compileAction(g, as)
		if err != nil {
			return nil, err
		}
		d.Actions = append(d.Actions, act)
	}

	for _, n := range spec.Initially {
		n := n
		f, err := compileFormula(g, &n)
		if err != nil {
			return nil, err
		}
		if err := validateInitialShape(f); err != nil {
			return nil, err
		}
		d.Initially = append(d.Initially, f)
	}
	for _, n := range spec.Goal {
		n := n
		f, err := compileFormula(g, &n)
		if err != nil {
			return nil, err
		}
		d.Goal = append(d.Goal, f)
	}

	g.Freeze()
	return d, nil
}

func compileAction(g *ground.Grounder, as actionSpec) (*Action, error) {
	id, err := g.Action(as.Name)
	if err != nil {
		return nil, err
	}
	act := &Action{
		ID:                  id,
		Name:                as.Name,
		FullyObservants:     make(map[bits.Agent]*belief.Formula),
		PartiallyObservants: make(map[bits.Agent]*belief.Formula),
	}

	var t ActionType
	switch as.Type {
	case "ontic":
		t = Ontic
	case "sensing":
		t = Sensing
	case "announcement":
		t = Announcement
	case "":
		t = NotSet
	default:
		return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: action %q has unknown type %q", as.Name, as.Type)}
	}
	if err := act.SetType(t); err != nil {
		return nil, err
	}

	for _, n := range as.Executability {
		n := n
		f, err := compileFormula(g, &n)
		if err != nil {
			return nil, err
		}
		act.Executability = append(act.Executability, f)
	}

	for _, es := range as.Effects {
		ff, err := compileFluentFormula(g, es.Postcondition)
		if err != nil {
			return nil, err
		}
		if !ff.Singleton() {
			return nil, &CoreError{Code: ExitNonDeterminismUnsupported, Message: fmt.Sprintf("domain: action %q has a non-singleton effect disjunction", as.Name)}
		}
		guard := belief.Empty()
		if es.Guard != nil {
			guard, err = compileFormula(g, es.Guard)
			if err != nil {
				return nil, err
			}
		}
		act.Effects = append(act.Effects, Effect{Postcondition: ff, Guard: guard})
	}

	for _, os := range as.FullyObservant {
		a, err := g.Agent(os.Agent)
		if err != nil {
			return nil, err
		}
		guard := belief.Empty()
		if os.Guard != nil {
			guard, err = compileFormula(g, os.Guard)
			if err != nil {
				return nil, err
			}
		}
		act.FullyObservants[a] = guard
	}
	for _, os := range as.PartiallyObservant {
		a, err := g.Agent(os.Agent)
		if err != nil {
			return nil, err
		}
		guard := belief.Empty()
		if os.Guard != nil {
			guard, err = compileFormula(g, os.Guard)
			if err != nil {
				return nil, err
			}
		}
		act.PartiallyObservants[a] = guard
	}

	return act, nil
}

func compileFluentFormula(g *ground.Grounder, disjuncts [][]string) (bits.FluentFormula, error) {
	ff := make(bits.FluentFormula, 0, len(disjuncts))
	for _, conj := range disjuncts {
		lits := make([]bits.Fluent, 0, len(conj))
		for _, lit := range conj {
			f, err := compileLiteral(g, lit)
			if err != nil {
				return nil, err
			}
			lits = append(lits, f)
		}
		set := bits.NewFluentsSet(lits...)
		if !set.Consistent() {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: "domain: inconsistent fluent conjunction (fluent and its negation both present)"}
		}
		ff = append(ff, set)
	}
	return ff, nil
}

func compileLiteral(g *ground.Grounder, lit string) (bits.Fluent, error) {
	neg := false
	name := lit
	if len(name) > 0 && name[0] == '!' {
		neg = true
		name = name[1:]
	}
	f, err := g.Fluent(name)
	if err != nil {
		return 0, &CoreError{Code: ExitUndeclaredIdentifier, Message: err.Error()}
	}
	if neg {
		f = f.Negate()
	}
	return f, nil
}

// compileFormula recursively compiles a structured YAML formula node
// into a belief.Formula. A node is a single-key
// mapping naming its Kind: fluent, b, e, c, d, not, and, or, empty.
func compileFormula(g *ground.Grounder, n *yaml.Node) (*belief.Formula, error) {
	if n == nil || n.Kind == 0 {
		return belief.Empty(), nil
	}
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: "domain: formula node must be a single-key mapping naming its kind"}
	}
	key := n.Content[0].Value
	val := n.Content[1]

	switch key {
	case "empty":
		return belief.Empty(), nil
	case "fluent":
		var disjuncts [][]string
		if err := val.Decode(&disjuncts); err != nil {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: bad fluent node: %v", err)}
		}
		ff, err := compileFluentFormula(g, disjuncts)
		if err != nil {
			return nil, err
		}
		return belief.Fluent(ff), nil
	case "b":
		var spec struct {
			Agent string    `yaml:"agent"`
			Phi   yaml.Node `yaml:"phi"`
		}
		if err := val.Decode(&spec); err != nil {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: bad b node: %v", err)}
		}
		a, err := g.Agent(spec.Agent)
		if err != nil {
			return nil, &CoreError{Code: ExitUndeclaredIdentifier, Message: err.Error()}
		}
		phi, err := compileFormula(g, &spec.Phi)
		if err != nil {
			return nil, err
		}
		return belief.B(a, phi), nil
	case "e", "c", "d":
		var spec struct {
			Agents []string  `yaml:"agents"`
			Phi    yaml.Node `yaml:"phi"`
		}
		if err := val.Decode(&spec); err != nil {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: bad %s node: %v", key, err)}
		}
		agents := make([]bits.Agent, 0, len(spec.Agents))
		for _, name := range spec.Agents {
			a, err := g.Agent(name)
			if err != nil {
				return nil, &CoreError{Code: ExitUndeclaredIdentifier, Message: err.Error()}
			}
			agents = append(agents, a)
		}
		phi, err := compileFormula(g, &spec.Phi)
		if err != nil {
			return nil, err
		}
		as := bits.NewAgentSet(agents...)
		switch key {
		case "e":
			return belief.E(as, phi), nil
		case "c":
			return belief.C(as, phi), nil
		default:
			return belief.D(as, phi), nil
		}
	case "not":
		var spec struct {
			Phi yaml.Node `yaml:"phi"`
		}
		if err := val.Decode(&spec); err != nil {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: bad not node: %v", err)}
		}
		phi, err := compileFormula(g, &spec.Phi)
		if err != nil {
			return nil, err
		}
		return belief.Not(phi), nil
	case "and", "or":
		var nodes []yaml.Node
		if err := val.Decode(&nodes); err != nil {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: bad %s node: %v", key, err)}
		}
		if len(nodes) != 2 {
			return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: %s node needs exactly 2 operands", key)}
		}
		left, err := compileFormula(g, &nodes[0])
		if err != nil {
			return nil, err
		}
		right, err := compileFormula(g, &nodes[1])
		if err != nil {
			return nil, err
		}
		if key == "and" {
			return belief.And(left, right), nil
		}
		return belief.Or(left, right), nil
	default:
		return nil, &CoreError{Code: ExitFormulaShapeUnset, Message: fmt.Sprintf("domain: unknown formula kind %q", key)}
	}
}

// validateInitialShape enforces §4.1's restriction on `initially`
// entries: plain fluent formulae, C(G, fluent-formula), and the two
// edge-removal patterns C(G, B(a,φ) ∨ ¬B(a,φ)) / C(G, ¬B(a,φ) ∧ ¬B(a,¬φ)).
// Anything else is a domain error (§6).
func validateInitialShape(f *belief.Formula) error {
	switch f.Kind {
	case belief.KindFluent, belief.KindEmpty:
		return nil
	case belief.KindC:
		inner := f.Sub[0]
		if inner.Kind == belief.KindFluent {
			return nil
		}
		if isEdgeRemovalPattern(inner) {
			return nil
		}
	}
	return &CoreError{Code: ExitFormulaShapeUnset, Message: "domain: `initially` entries must be a fluent formula, C(G, fluent), or a supported edge-removal pattern"}
}

// isEdgeRemovalPattern matches B(a,φ) ∨ ¬B(a,φ) or ¬B(a,φ) ∧ ¬B(a,¬φ).
func isEdgeRemovalPattern(f *belief.Formula) bool {
	if f.Kind != belief.KindProp {
		return false
	}
	if f.Op == belief.OpOr {
		l, r := f.Sub[0], f.Sub[1]
		return matchesBNotB(l, r) || matchesBNotB(r, l)
	}
	if f.Op == belief.OpAnd {
		l, r := f.Sub[0], f.Sub[1]
		return matchesNotBNotNegB(l, r) || matchesNotBNotNegB(r, l)
	}
	return false
}

func matchesBNotB(pos, neg *belief.Formula) bool {
	if pos.Kind != belief.KindB || neg.Kind != belief.KindProp || neg.Op != belief.OpNot {
		return false
	}
	inner := neg.Sub[0]
	return inner.Kind == belief.KindB && inner.Agent == pos.Agent && inner.Sub[0].Equal(pos.Sub[0])
}

func matchesNotBNotNegB(a, b *belief.Formula) bool {
	if a.Kind != belief.KindProp || a.Op != belief.OpNot || a.Sub[0].Kind != belief.KindB {
		return false
	}
	if b.Kind != belief.KindProp || b.Op != belief.OpNot || b.Sub[0].Kind != belief.KindB {
		return false
	}
	ba, bb := a.Sub[0], b.Sub[0]
	if ba.Agent != bb.Agent {
		return false
	}
	phi := ba.Sub[0]
	negPhi := belief.Not(phi)
	return bb.Sub[0].Equal(negPhi) || phi.Equal(belief.Not(bb.Sub[0]))
}
