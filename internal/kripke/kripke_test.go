package kripke_test

import (
	"bytes"
	"testing"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// coinDomain builds a minimal one-agent, two-fluent domain: heads is
// fixed true by `initially`, looked varies freely, and a single ontic
// action "look" sets looked unconditionally.
func coinDomain(t *testing.T) (*domain.Domain, bits.Fluent, bits.Fluent, bits.Agent) {
	t.Helper()
	g := ground.New()
	heads := g.AddFluent("heads")
	looked := g.AddFluent("looked")
	a := g.AddAgent("a")
	g.Freeze()

	look := &domain.Action{
		Name: "look",
		Effects: []domain.Effect{
			{Postcondition: bits.FluentFormula{bits.NewFluentsSet(looked)}, Guard: belief.Empty()},
		},
		FullyObservants: map[bits.Agent]*belief.Formula{a: belief.Empty()},
	}
	if err := look.SetType(domain.Ontic); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	d := &domain.Domain{
		Grounder:  g,
		Fluents:   []bits.Fluent{heads, looked},
		Agents:    bits.NewAgentSet(a),
		Actions:   []*domain.Action{look},
		Initially: belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(heads)})},
	}
	return d, heads, looked, a
}

func TestBuildInitialConsistentAndConnected(t *testing.T) {
	d, heads, _, a := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	if len(s.Worlds) != 2 {
		t.Fatalf("expected 2 worlds (looked true/false), got %d", len(s.Worlds))
	}
	if !s.Pointed.World.Fluents.Contains(heads) {
		t.Fatalf("pointed world should satisfy initially: heads")
	}
	// total relation: from pointed, a can reach both worlds.
	if got := len(s.Accessible(s.Pointed, a)); got != 2 {
		t.Fatalf("expected totally connected relation (2 accessible worlds), got %d", got)
	}
}

func TestEntailsAtFluentAndB(t *testing.T) {
	d, heads, looked, a := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	headsFormula := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(heads)})
	if !s.Entails(headsFormula) {
		t.Fatalf("pointed world must entail heads")
	}
	// a is uncertain about looked, so a doesn't believe looked either
	// way, since the relation is total and looked varies across worlds.
	lookedFormula := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(looked)})
	if s.Entails(belief.B(a, lookedFormula)) {
		t.Fatalf("a should not believe looked, since some accessible world disagrees")
	}
}

func TestApplyOnticUpdatesFluentsAndBumpsDepth(t *testing.T) {
	d, _, looked, _ := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	before := s.MaxDepth

	ns, err := s.Apply(store, d.Actions[0], d.Agents)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ns.MaxDepth != before+1 {
		t.Fatalf("ontic update must bump maxDepth: got %d, want %d", ns.MaxDepth, before+1)
	}
	if !ns.Pointed.World.Fluents.Contains(looked) {
		t.Fatalf("pointed world after look must satisfy looked")
	}
}

func TestApplyNotExecutableIsRejected(t *testing.T) {
	d, heads, _, a := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}

	blocked := &domain.Action{
		Name:          "impossible",
		Executability: belief.FormulaeList{belief.Not(belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(heads)}))},
		FullyObservants: map[bits.Agent]*belief.Formula{a: belief.Empty()},
	}
	if err := blocked.SetType(domain.Ontic); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	if _, err := s.Apply(store, blocked, d.Agents); err == nil {
		t.Fatalf("expected ActionNotExecutable error")
	} else if ce, ok := err.(*domain.CoreError); !ok || ce.Code != domain.ExitActionNotExecutable {
		t.Fatalf("expected CoreError ExitActionNotExecutable, got %v", err)
	}
}

func TestApplyNotSetTypeIsRejected(t *testing.T) {
	d, _, _, _ := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}

	uninitialized := &domain.Action{Name: "noop"}
	if _, err := s.Apply(store, uninitialized, d.Agents); err == nil {
		t.Fatalf("expected ActionTypeConflict error for NotSet action type")
	} else if ce, ok := err.(*domain.CoreError); !ok || ce.Code != domain.ExitActionTypeConflict {
		t.Fatalf("expected CoreError ExitActionTypeConflict, got %v", err)
	}
}

func TestWorldStoreInterningIsContentAddressed(t *testing.T) {
	store := kripke.NewWorldStore()
	fs := bits.NewFluentsSet(bits.NewFluent(0), bits.NewFluent(1))
	w1, err := store.Intern(fs)
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	w2, err := store.Intern(bits.NewFluentsSet(bits.NewFluent(1), bits.NewFluent(0)))
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if w1 != w2 {
		t.Fatalf("equal fluent sets must intern to the same *KripkeWorld")
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one interned world, got %d", store.Len())
	}
}

func TestWorldStoreRejectsInconsistentWorld(t *testing.T) {
	store := kripke.NewWorldStore()
	f := bits.NewFluent(0)
	fs := bits.NewFluentsSet(f, f.Negate())
	if _, err := store.Intern(fs); err == nil {
		t.Fatalf("expected error interning an inconsistent fluent set")
	}
}

func TestStateTotalOrderKeyIsDeterministic(t *testing.T) {
	d, _, _, _ := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	k1 := s.TotalOrderKey()
	k2 := s.Clone().TotalOrderKey()
	if k1 != k2 {
		t.Fatalf("cloned state must produce an identical ordering key")
	}
}

// sensingCoinDomain builds §8 scenario 1: one fluent (heads), one agent
// (a), and a sensing action "look" that reveals heads to a without
// changing it. No `initially` edge-removal entry is given, so the
// totally-connected relation leaves a ignorant of heads until look is
// applied.
func sensingCoinDomain(t *testing.T) (*domain.Domain, bits.Fluent, bits.Agent) {
	t.Helper()
	g := ground.New()
	heads := g.AddFluent("heads")
	a := g.AddAgent("a")
	g.Freeze()

	look := &domain.Action{
		Name: "look",
		Effects: []domain.Effect{
			{Postcondition: bits.FluentFormula{bits.NewFluentsSet(heads)}, Guard: belief.Empty()},
		},
		FullyObservants: map[bits.Agent]*belief.Formula{a: belief.Empty()},
	}
	if err := look.SetType(domain.Sensing); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	d := &domain.Domain{
		Grounder: g,
		Fluents:  []bits.Fluent{heads},
		Agents:   bits.NewAgentSet(a),
		Actions:  []*domain.Action{look},
	}
	return d, heads, a
}

func TestApplySensingRevealsSensedFluent(t *testing.T) {
	d, heads, a := sensingCoinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}

	headsFormula := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(heads)})
	ignorant := belief.Or(belief.B(a, headsFormula), belief.B(a, belief.Not(headsFormula)))
	if s.Entails(ignorant) {
		t.Fatalf("a must be ignorant of heads before look")
	}

	ns, err := s.Apply(store, d.Actions[0], d.Agents)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !ns.Entails(ignorant) {
		t.Fatalf("a must know heads one way or the other after look")
	}
	if ns.EntailsAt(ns.Pointed, headsFormula) {
		if !ns.Entails(belief.B(a, headsFormula)) {
			t.Fatalf("heads true at pointed: a must believe heads")
		}
	} else if !ns.Entails(belief.B(a, belief.Not(headsFormula))) {
		t.Fatalf("heads false at pointed: a must believe not heads")
	}
}

// TestApplySensingOnlyUsesGuardTrueEffects exercises effectFormulaAt's
// guard filter directly: a second conditional effect whose guard is
// false at the pointed world must not contribute to the sensed
// formula, so it must not affect a's edge-filtering.
func TestApplySensingOnlyUsesGuardTrueEffects(t *testing.T) {
	g := ground.New()
	heads := g.AddFluent("heads")
	tails := g.AddFluent("tails")
	a := g.AddAgent("a")
	g.Freeze()

	falseGuard := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(tails)})
	look := &domain.Action{
		Name: "look",
		Effects: []domain.Effect{
			{Postcondition: bits.FluentFormula{bits.NewFluentsSet(heads)}, Guard: belief.Empty()},
			{Postcondition: bits.FluentFormula{bits.NewFluentsSet(tails)}, Guard: falseGuard},
		},
		FullyObservants: map[bits.Agent]*belief.Formula{a: belief.Empty()},
	}
	if err := look.SetType(domain.Sensing); err != nil {
		t.Fatalf("SetType: %v", err)
	}

	d := &domain.Domain{
		Grounder:  g,
		Fluents:   []bits.Fluent{heads, tails},
		Agents:    bits.NewAgentSet(a),
		Actions:   []*domain.Action{look},
		Initially: belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(tails.Negate())})},
	}

	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}

	headsFormula := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(heads)})
	ns, err := s.Apply(store, d.Actions[0], d.Agents)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// tails is false everywhere (fixed by `initially`), so the second
	// effect's guard never holds: the sensed formula must be heads
	// alone, and a must learn heads's truth value, not tails's.
	if ns.EntailsAt(ns.Pointed, headsFormula) {
		if !ns.Entails(belief.B(a, headsFormula)) {
			t.Fatalf("a must believe heads when heads holds at pointed")
		}
	} else if !ns.Entails(belief.B(a, belief.Not(headsFormula))) {
		t.Fatalf("a must believe not heads when heads is false at pointed")
	}
}

func TestWriteAsDotAndJSONRoundtrip(t *testing.T) {
	d, _, _, _ := coinDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	var dotBuf, jsonBuf bytes.Buffer
	s.WriteAsDot(&dotBuf, d.Grounder)
	if dotBuf.Len() == 0 {
		t.Fatalf("expected non-empty DOT output")
	}
	if err := s.WriteAsJSON(&jsonBuf, d.Grounder); err != nil {
		t.Fatalf("WriteAsJSON: %v", err)
	}
	if jsonBuf.Len() == 0 {
		t.Fatalf("expected non-empty JSON output")
	}
}
