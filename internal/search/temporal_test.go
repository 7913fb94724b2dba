package search_test

import (
	"testing"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/kripke"
	"github.com/epistemicgo/episteme/internal/search"
)

func TestBuildGraphAndWheneverPEventuallyQFailsOnRepeatableStep(t *testing.T) {
	d := chainDomain(t)
	store := kripke.NewWorldStore()
	initial := buildInitial(t, d, store)

	g := search.BuildGraph(initial, d, store, d.Agents, 0)
	if _, ok := g.Nodes[g.Initial]; !ok {
		t.Fatalf("expected the initial node to be present in the built graph")
	}

	s1 := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0])})
	s3 := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[2])})

	rule := search.WheneverPEventuallyQ(s1, s3)
	results := search.CheckRules(g, []search.Rule{rule})
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	// step1 has no guard, so re-applying it at the s1 state yields the
	// same state: a self-loop on which s3 never holds.
	if results[0].Holds {
		t.Fatalf("expected %q to fail since step1 can repeat forever once s1 holds", results[0].Rule)
	}
}

func TestAlwaysEventuallyFailsWhenCOnlyHoldsOnce(t *testing.T) {
	d := chainDomain(t)
	store := kripke.NewWorldStore()
	initial := buildInitial(t, d, store)

	g := search.BuildGraph(initial, d, store, d.Agents, 0)
	s1 := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(d.Fluents[0].Negate())})

	rule := search.AlwaysEventually(s1)
	results := search.CheckRules(g, []search.Rule{rule})
	if results[0].Holds {
		t.Fatalf("expected %q to fail once s1 becomes permanently true", results[0].Rule)
	}
	if results[0].Lasso == nil {
		t.Fatalf("expected a counterexample lasso for a failing rule")
	}
}
