package gnnclient_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/gnnclient"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
)

func writeFakeOracle(t *testing.T, value int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.sh")
	script := fmt.Sprintf("#!/bin/sh\necho \"VALUE:%d\" > \"$3\"\n", value)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake oracle: %v", err)
	}
	return path
}

func buildTinyState(t *testing.T) (*kripke.State, *ground.Grounder) {
	t.Helper()
	g := ground.New()
	p := g.AddFluent("p")
	g.Freeze()
	d := &domain.Domain{
		Grounder:  g,
		Fluents:   []bits.Fluent{p},
		Initially: belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(p)})},
	}
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	return s, g
}

func TestEvaluateParsesOracleValue(t *testing.T) {
	oracle := writeFakeOracle(t, 7)
	s, g := buildTinyState(t)
	c := gnnclient.New(oracle, t.TempDir())
	v, err := c.Evaluate(s, 3, g)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected oracle value 7, got %d", v)
	}
}

func TestEvaluateFailsOnNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("writing fake oracle: %v", err)
	}
	s, g := buildTinyState(t)
	c := gnnclient.New(path, t.TempDir())
	if _, err := c.Evaluate(s, 0, g); err == nil {
		t.Fatalf("expected an error when the oracle exits non-zero")
	} else if ce, ok := err.(*domain.CoreError); !ok || ce.Code != domain.ExitGNNOracleFailure {
		t.Fatalf("expected CoreError ExitGNNOracleFailure, got %v", err)
	}
}
