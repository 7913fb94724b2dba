// Package domain holds the grounded domain model (§3 Action, §6 Domain
// input) produced by parsing a domain file. Domain-file parsing is an
// external collaborator per §1's scope split, but the core cannot be
// exercised without it, so a concrete YAML reader is provided here.
package domain

import (
	"fmt"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/ground"
)

// ActionType distinguishes ontic, sensing, and announcement actions.
// NotSet marks an action before its first informative proposition.
type ActionType int

const (
	NotSet ActionType = iota
	Ontic
	Sensing
	Announcement
)

func (t ActionType) String() string {
	switch t {
	case Ontic:
		return "ontic"
	case Sensing:
		return "sensing"
	case Announcement:
		return "announcement"
	default:
		return "notset"
	}
}

// Effect pairs a postcondition (restricted to a single conjunction, per
// §3) with the belief-formula guard that must hold at the pointed world
// for the effect to apply.
type Effect struct {
	Postcondition bits.FluentFormula
	Guard         *belief.Formula
}

// Action is the grounded tuple of §3: id, name, type, executability,
// effects, and the two observability maps.
type Action struct {
	ID                  bits.ActionID
	Name                string
	Type                ActionType
	Executability       belief.FormulaeList
	Effects             []Effect
	FullyObservants     map[bits.Agent]*belief.Formula
	PartiallyObservants map[bits.Agent]*belief.Formula
}

// ExecutableAt reports whether every executability conjunct holds.
// An action with an empty executability list is always executable
// (§8 boundary behaviour).
func (a *Action) ExecutableAt(entails func(*belief.Formula) bool) bool {
	for _, f := range a.Executability {
		if !entails(f) {
			return false
		}
	}
	return true
}

// SetType assigns the action's informative type on first proposition;
// a later proposition of a different informative type is a fatal
// conflict (§3, §9 REDESIGN FLAGS — OBSERVANCE/EXECUTABILITY never
// reset an already-established type).
func (a *Action) SetType(t ActionType) error {
	if t == NotSet {
		return nil
	}
	if a.Type == NotSet {
		a.Type = t
		return nil
	}
	if a.Type != t {
		return &CoreError{
			Code:    ExitActionTypeConflict,
			Message: fmt.Sprintf("action %q: conflicting type %s after %s", a.Name, t, a.Type),
		}
	}
	return nil
}

// Domain is the fully grounded, read-only domain: fluents, agents,
// actions, initial conditions, and goal, plus the Grounder that named
// them (§3, §6).
type Domain struct {
	Grounder  *ground.Grounder
	Fluents   []bits.Fluent
	Agents    bits.AgentSet
	Actions   []*Action
	Initially belief.FormulaeList
	Goal      belief.FormulaeList
}

// ActionByID returns the action with the given id in O(1), assuming
// Actions is dense and sorted by id (guaranteed by the loader).
func (d *Domain) ActionByID(id bits.ActionID) *Action {
	if int(id) < len(d.Actions) {
		return d.Actions[id]
	}
	return nil
}
