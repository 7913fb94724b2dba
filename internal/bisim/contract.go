package bisim

import (
	"sync"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Type selects which refinement strategy Contract runs.
type Type int

const (
	// FastBisimulationType is the rank-based variant, preferred per §4.2.
	FastBisimulationType Type = iota
	// PaigeTarjanType is the whole-graph refinement variant.
	PaigeTarjanType
)

// DefaultFailureThreshold is the number of recoverable bisimulation
// failures tolerated before an Engine disables itself for the rest of
// the run (§4.2 Failure handling).
const DefaultFailureThreshold = 10

// Engine holds the per-worker (thread-local, per §5) bisimulation
// failure counter. It must not be shared across goroutines: each search
// worker owns one.
type Engine struct {
	mu        sync.Mutex
	failures  int
	disabled  bool
	Threshold int
}

// NewEngine returns an Engine with the default failure threshold.
func NewEngine() *Engine {
	return &Engine{Threshold: DefaultFailureThreshold}
}

// Disabled reports whether this engine has tripped its failure
// threshold and stopped contracting states for the remainder of the run.
func (e *Engine) Disabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabled
}

func (e *Engine) recordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures++
	if e.failures >= e.Threshold {
		e.disabled = true
	}
}

// Contract reduces s to its bisimilar quotient using the given
// strategy. If the engine is disabled, or the refinement result fails
// its sanity check, Contract returns s unchanged and applied=false; the
// failure (not the disabled-skip) increments the recoverable-failure
// counter (§4.2).
func (e *Engine) Contract(s *kripke.State, t Type) (contracted *kripke.State, applied bool) {
	if e.Disabled() {
		return s, false
	}

	g := Encode(s)
	var p Partition
	func() {
		defer func() {
			if r := recover(); r != nil {
				p = nil
			}
		}()
		if t == PaigeTarjanType {
			p = PaigeTarjan(g)
		} else {
			p = FastBisimulation(g)
		}
	}()

	if !validPartition(g, p) {
		e.recordFailure()
		return s, false
	}
	return Quotient(g, p), true
}

// validPartition defends against the "block ends up empty" class of
// invariant break named in §4.2: every node of g must be assigned to
// exactly one block.
func validPartition(g *Graph, p Partition) bool {
	if p == nil {
		return false
	}
	if len(p) != len(g.Nodes) {
		return false
	}
	for _, n := range g.Nodes {
		if _, ok := p[n]; !ok {
			return false
		}
	}
	return true
}

// VerifyEquivalence implements §4.2's debug-time equivalence check:
// every formula in checks must be entailed identically by before and
// after (initial conditions, S5 fluent constraint, goal, and every
// action's executability/guard formulae, per the caller's assembly of
// checks).
func VerifyEquivalence(before, after *kripke.State, checks belief.FormulaeList) bool {
	for _, f := range checks {
		if before.Entails(f) != after.Entails(f) {
			return false
		}
	}
	return true
}
