package search

import (
	"sync/atomic"

	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Scorer computes a search state's heuristic value, used only by
// HeuristicFirst/A* open lists (§4.3, §4.4). Engine treats a negative
// result as "unreachable to goal under the relaxation" and excludes the
// state from expansion.
type Scorer func(s *State) (int, error)

// Result is what Run returns: either a reconstructed plan or, absent a
// fatal error, a report that no plan exists (or the run was cancelled).
type Result struct {
	Found           bool
	Cancelled       bool
	ExecutedActions []bits.ActionID
	PlanLength      uint16
	Expanded        int
}

// Engine is the main search loop of §4.4, parameterised by an open-list
// strategy, an optional heuristic scorer, optional per-state
// bisimulation contraction, and optional visited-set deduplication.
type Engine struct {
	Domain       *domain.Domain
	Store        *kripke.WorldStore
	AllAgents    bits.AgentSet
	Open         OpenList
	Scorer       Scorer
	CheckVisited bool
	Visited      *VisitedSet
	Bisim        *bisim.Engine
	BisimType    bisim.Type

	// Cancel, when non-nil, is polled at the top of every iteration so
	// a portfolio runner can cooperatively stop this engine (§4.4, §5).
	Cancel *atomic.Bool
}

// NewEngine builds an Engine around the given open-list strategy. The
// caller configures Scorer/CheckVisited/Bisim/Cancel afterward as the
// chosen configuration requires.
func NewEngine(open OpenList, d *domain.Domain, store *kripke.WorldStore) *Engine {
	return &Engine{
		Domain:    d,
		Store:     store,
		AllAgents: d.Agents,
		Open:      open,
		Visited:   NewVisitedSet(),
	}
}

// Run executes the main loop of §4.4 starting from initial, returning a
// reconstructed plan, a no-plan result, or a cancellation report. A
// non-nil error is always fatal (action-type conflict, inconsistent
// world, scorer failure) and distinct from "no plan found".
func (e *Engine) Run(initial *kripke.State) (*Result, error) {
	start := &State{Kripke: initial}
	if e.Scorer != nil {
		v, err := e.Scorer(start)
		if err != nil {
			return nil, err
		}
		start.HeuristicValue = v
	}
	if iddfs, ok := e.Open.(*IDDFSList); ok {
		iddfs.SetInitial(start)
	} else {
		e.Open.Push(start)
	}

	expanded := 0
	for !e.Open.Empty() {
		if e.Cancel != nil && e.Cancel.Load() {
			return &Result{Cancelled: true, Expanded: expanded}, nil
		}

		s := e.Open.Peek()
		e.Open.Pop()
		if s == nil {
			break
		}

		if s.Kripke.EntailsAll(e.Domain.Goal) {
			return &Result{
				Found:           true,
				ExecutedActions: s.ExecutedActions,
				PlanLength:      s.PlanLength,
				Expanded:        expanded,
			}, nil
		}

		if e.CheckVisited {
			if e.Visited.CheckAndInsert(s) {
				continue
			}
		}
		expanded++

		for _, act := range e.Domain.Actions {
			if !act.ExecutableAt(s.Kripke.Entails) {
				continue
			}
			next, err := s.Kripke.Apply(e.Store, act, e.AllAgents)
			if err != nil {
				return nil, err
			}
			if e.Bisim != nil {
				if contracted, applied := e.Bisim.Contract(next, e.BisimType); applied {
					next = contracted
				}
			}
			child := successor(s, next, act.ID)
			if e.Scorer != nil {
				v, err := e.Scorer(child)
				if err != nil {
					return nil, err
				}
				child.HeuristicValue = v
				if v < 0 {
					continue
				}
			}
			e.Open.Push(child)
		}
	}

	return &Result{Expanded: expanded}, nil
}
