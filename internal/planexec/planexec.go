// Package planexec implements §4.4's plan execution/validation: replay
// a sequence of action names from the initial state, checking
// executability at every step, optionally rendering each intermediate
// state as DOT (§6 `--execute-actions`/`--execute --plan-file`).
package planexec

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// StepResult records one replayed action: the action name, whether it
// was executable at the pre-step state, and the resulting state (nil
// if execution failed).
type StepResult struct {
	ActionName  string
	Executable  bool
	State       *kripke.State
	Err         error
}

// Report is the full outcome of replaying a plan.
type Report struct {
	Steps []StepResult
	// Valid is true iff every step was executable and no step errored.
	Valid bool
}

// ReadPlanFile parses a plan file (§6 `--plan-file`): one action name
// per line, blank lines and `#`-prefixed comments ignored.
func ReadPlanFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("planexec: opening plan file: %w", err)
	}
	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// Execute replays actionNames from initial, stopping at the first
// non-executable or erroring step but still returning every step
// attempted so the caller can report where validation diverged (§4.4
// Plan execution/validation, §8 property 8 "plan soundness").
func Execute(d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, actionNames []string, bisimEngine *bisim.Engine, bisimType bisim.Type) (*Report, error) {
	report := &Report{Valid: true}
	cur := initial
	for _, name := range actionNames {
		id, err := d.Grounder.Action(name)
		if err != nil {
			report.Valid = false
			report.Steps = append(report.Steps, StepResult{ActionName: name, Err: err})
			return report, nil
		}
		act := d.ActionByID(id)
		if act == nil {
			err := fmt.Errorf("planexec: action %q has no grounded definition", name)
			report.Valid = false
			report.Steps = append(report.Steps, StepResult{ActionName: name, Err: err})
			return report, nil
		}

		executable := act.ExecutableAt(cur.Entails)
		if !executable {
			report.Valid = false
			report.Steps = append(report.Steps, StepResult{ActionName: name, Executable: false})
			return report, nil
		}

		next, err := cur.Apply(store, act, d.Agents)
		if err != nil {
			report.Valid = false
			report.Steps = append(report.Steps, StepResult{ActionName: name, Executable: true, Err: err})
			return report, nil
		}
		if bisimEngine != nil {
			if contracted, applied := bisimEngine.Contract(next, bisimType); applied {
				next = contracted
			}
		}
		report.Steps = append(report.Steps, StepResult{ActionName: name, Executable: true, State: next})
		cur = next
	}
	return report, nil
}

// WriteDOT renders every successfully-reached intermediate state in the
// report as a sequence of Graphviz digraphs (§6 "emit a DOT rendering
// of each intermediate state if requested").
func WriteDOT(w io.Writer, report *Report, d *domain.Domain) {
	for i, step := range report.Steps {
		if step.State == nil {
			continue
		}
		fmt.Fprintf(w, "// step %d: %s\n", i+1, step.ActionName)
		step.State.WriteAsDot(w, d.Grounder)
	}
}
