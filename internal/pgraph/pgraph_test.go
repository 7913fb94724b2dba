package pgraph_test

import (
	"testing"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
	"github.com/epistemicgo/episteme/internal/pgraph"
)

func lookDomain(t *testing.T) *domain.Domain {
	t.Helper()
	g := ground.New()
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
	return &domain.Domain{
		Grounder: g,
		Fluents:  []bits.Fluent{looked},
		Agents:   bits.NewAgentSet(a),
		Actions:  []*domain.Action{look},
	}
}

func TestBuildReachesGoalViaOntic(t *testing.T) {
	d := lookDomain(t)
	store := kripke.NewWorldStore()
	d.Initially = belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0].Negate())})}
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}

	goal := belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0])})}
	g := pgraph.Build(s, d, goal)
	if !g.Satisfiable {
		t.Fatalf("expected goal reachable via the look action")
	}
	if pgraph.LPG(g) != 1 {
		t.Fatalf("expected L_PG == 1, got %d", pgraph.LPG(g))
	}
	if pgraph.SPG(g) < 0 {
		t.Fatalf("expected non-negative S_PG for a satisfiable graph")
	}
	if c := pgraph.CPG(g); c < 0 {
		t.Fatalf("expected non-negative C_PG for a satisfiable graph, got %d", c)
	}
}

func TestBuildUnsatisfiableWhenGoalUnreachable(t *testing.T) {
	g := ground.New()
	isolated := g.AddFluent("isolated")
	g.Freeze()
	d := &domain.Domain{
		Grounder: g,
		Fluents:  []bits.Fluent{isolated},
		Initially: belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(isolated.Negate())})},
	}
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	goal := belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(isolated)})}
	graph := pgraph.Build(s, d, goal)
	if graph.Satisfiable {
		t.Fatalf("expected unsatisfiable graph when no action can ever set the goal fluent")
	}
	if pgraph.LPG(graph) != -1 || pgraph.SPG(graph) != -1 || pgraph.CPG(graph) != -1 {
		t.Fatalf("expected all planning-graph heuristics to report -1 when unsatisfiable")
	}
}

func TestSubgoalsCountsUnmetGoalFormulae(t *testing.T) {
	d := lookDomain(t)
	d.Initially = belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0].Negate())})}
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	goal := belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0])})}
	if got := pgraph.Subgoals(s, goal); got != 1 {
		t.Fatalf("expected 1 unmet subgoal, got %d", got)
	}
}
