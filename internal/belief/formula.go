// Package belief implements the BeliefFormula AST of §3: fluent,
// B/E/C/D modal operators, propositional combinators, and the empty
// (vacuously true) formula, with structural equality/ordering and a
// canonical string key for use in the planning graph's score maps.
package belief

import (
	"fmt"
	"sort"
	"strings"

	"github.com/epistemicgo/episteme/internal/bits"
)

// Kind tags the variant of a Formula node.
type Kind int

const (
	// KindEmpty is the vacuously-true formula (⊤).
	KindEmpty Kind = iota
	// KindFluent wraps a FluentFormula leaf.
	KindFluent
	// KindB is B(agent, φ): agent believes φ.
	KindB
	// KindE is E(agents, φ): everyone in agents believes φ.
	KindE
	// KindC is C(agents, φ): common belief of φ among agents.
	KindC
	// KindD is D(agents, φ): distributed belief of φ among agents.
	KindD
	// KindProp is a propositional combinator: not/and/or.
	KindProp
)

// PropOp is the operator of a KindProp node.
type PropOp int

const (
	OpNot PropOp = iota
	OpAnd
	OpOr
)

// Formula is a BeliefFormula AST node. Exactly the fields relevant to
// Kind are populated; callers that build formulae should use the
// constructors below rather than struct literals.
type Formula struct {
	Kind   Kind
	FF     bits.FluentFormula // KindFluent
	Agent  bits.Agent         // KindB
	Agents bits.AgentSet      // KindE, KindC, KindD
	Op     PropOp             // KindProp
	Sub    []*Formula         // KindProp (1 or 2), KindB/E/C/D (1)
}

// Empty is the shared vacuously-true formula.
func Empty() *Formula { return &Formula{Kind: KindEmpty} }

// Fluent wraps a fluent formula leaf.
func Fluent(ff bits.FluentFormula) *Formula { return &Formula{Kind: KindFluent, FF: ff} }

// B builds B(agent, phi).
func B(agent bits.Agent, phi *Formula) *Formula {
	return &Formula{Kind: KindB, Agent: agent, Sub: []*Formula{phi}}
}

// E builds E(agents, phi).
func E(agents bits.AgentSet, phi *Formula) *Formula {
	return &Formula{Kind: KindE, Agents: agents, Sub: []*Formula{phi}}
}

// C builds C(agents, phi).
func C(agents bits.AgentSet, phi *Formula) *Formula {
	return &Formula{Kind: KindC, Agents: agents, Sub: []*Formula{phi}}
}

// D builds D(agents, phi).
func D(agents bits.AgentSet, phi *Formula) *Formula {
	return &Formula{Kind: KindD, Agents: agents, Sub: []*Formula{phi}}
}

// Not builds ¬phi.
func Not(phi *Formula) *Formula {
	return &Formula{Kind: KindProp, Op: OpNot, Sub: []*Formula{phi}}
}

// And builds phi1 ∧ phi2.
func And(phi1, phi2 *Formula) *Formula {
	return &Formula{Kind: KindProp, Op: OpAnd, Sub: []*Formula{phi1, phi2}}
}

// Or builds phi1 ∨ phi2.
func Or(phi1, phi2 *Formula) *Formula {
	return &Formula{Kind: KindProp, Op: OpOr, Sub: []*Formula{phi1, phi2}}
}

// Key returns a canonical string that is equal for structurally equal
// formulae (treating and/or as commutative), suitable as a map key in
// the planning graph's belief-formula score maps (§4.3).
func (f *Formula) Key() string {
	if f == nil {
		return "empty"
	}
	switch f.Kind {
	case KindEmpty:
		return "empty"
	case KindFluent:
		parts := make([]string, len(f.FF))
		for i, d := range f.FF {
			parts[i] = d.Key()
		}
		sort.Strings(parts)
		return "fluent(" + strings.Join(parts, "|") + ")"
	case KindB:
		return fmt.Sprintf("B(%d,%s)", f.Agent, f.Sub[0].Key())
	case KindE:
		return fmt.Sprintf("E(%s,%s)", agentsKey(f.Agents), f.Sub[0].Key())
	case KindC:
		return fmt.Sprintf("C(%s,%s)", agentsKey(f.Agents), f.Sub[0].Key())
	case KindD:
		return fmt.Sprintf("D(%s,%s)", agentsKey(f.Agents), f.Sub[0].Key())
	case KindProp:
		switch f.Op {
		case OpNot:
			return "not(" + f.Sub[0].Key() + ")"
		case OpAnd, OpOr:
			a, b := f.Sub[0].Key(), f.Sub[1].Key()
			if a > b {
				a, b = b, a
			}
			op := "and"
			if f.Op == OpOr {
				op = "or"
			}
			return op + "(" + a + "," + b + ")"
		}
	}
	panic(fmt.Sprintf("belief: unreachable formula kind %v", f.Kind))
}

func agentsKey(as bits.AgentSet) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return strings.Join(parts, ".")
}

// Equal reports structural equality, treating and/or as commutative.
func (f *Formula) Equal(g *Formula) bool {
	return f.Key() == g.Key()
}

// Less provides a total order over formulae, derived from Key, for
// deterministic iteration (e.g. sorting a goal CNF list).
func (f *Formula) Less(g *Formula) bool {
	return f.Key() < g.Key()
}

// Walk calls visit on f and, recursively, on every subformula.
func (f *Formula) Walk(visit func(*Formula)) {
	if f == nil {
		return
	}
	visit(f)
	for _, s := range f.Sub {
		s.Walk(visit)
	}
}

// FormulaeList is a CNF list: every element must be entailed (§3).
type FormulaeList []*Formula
