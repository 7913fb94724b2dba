package planexec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

const coinTossDomain = `
fluents: [heads]
agents: [a]
actions:
  - name: look
    type: sensing
    fully_observant:
      - agent: a
    effects:
      - postcondition: [[heads]]
goal:
  - or:
      - b: {agent: a, phi: {fluent: [[heads]]}}
      - b: {agent: a, phi: {fluent: [["!heads"]]}}
`

func loadCoinToss(t *testing.T) (*domain.Domain, *kripke.WorldStore, *kripke.State) {
	t.Helper()
	d, err := domain.LoadBytes([]byte(coinTossDomain))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	d.Grounder.Freeze()
	store := kripke.NewWorldStore()
	initial, err := kripke.BuildInitial(store, d)
	if err != nil {
		t.Fatalf("BuildInitial: %v", err)
	}
	return d, store, initial
}

func TestExecuteValidPlan(t *testing.T) {
	d, store, initial := loadCoinToss(t)
	report, err := Execute(d, store, initial, []string{"look"}, nil, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report)
	}
	if len(report.Steps) != 1 || !report.Steps[0].Executable {
		t.Fatalf("expected one executable step, got %+v", report.Steps)
	}
	if report.Steps[0].State == nil || !report.Steps[0].State.EntailsAll(d.Goal) {
		t.Fatalf("expected resulting state to entail the goal")
	}
}

func TestExecuteUnknownAction(t *testing.T) {
	d, store, initial := loadCoinToss(t)
	report, err := Execute(d, store, initial, []string{"nonexistent"}, nil, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected invalid report for unknown action")
	}
	if len(report.Steps) != 1 || report.Steps[0].Err == nil {
		t.Fatalf("expected one step with an error, got %+v", report.Steps)
	}
}

func TestExecuteRepeatedActionWithoutPrecondition(t *testing.T) {
	d, store, initial := loadCoinToss(t)
	// Running "look" twice: the second attempt is still executable since
	// the action carries no precondition, so the two-step plan is valid.
	report, err := Execute(d, store, initial, []string{"look", "look"}, nil, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected look to remain executable with no preconditions, got %+v", report)
	}
	if len(report.Steps) != 2 {
		t.Fatalf("expected two steps, got %d", len(report.Steps))
	}
}

func TestReadPlanFileSkipsBlankAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.txt")
	content := "look\n\n# a comment\n  \nlook\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	names, err := ReadPlanFile(path)
	if err != nil {
		t.Fatalf("ReadPlanFile: %v", err)
	}
	if len(names) != 2 || names[0] != "look" || names[1] != "look" {
		t.Fatalf("unexpected names: %+v", names)
	}
}

func TestWriteDOTEmitsOneGraphPerStep(t *testing.T) {
	d, store, initial := loadCoinToss(t)
	report, err := Execute(d, store, initial, []string{"look"}, nil, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var buf bytes.Buffer
	WriteDOT(&buf, report, d)
	out := buf.String()
	if !strings.Contains(out, "step 1: look") {
		t.Fatalf("expected step header in output, got %q", out)
	}
	if !strings.Contains(out, "digraph") {
		t.Fatalf("expected a digraph block, got %q", out)
	}
}
