// Package ground implements the Grounder: the bidirectional mapping
// between surface names and the bitset ids of internal/bits, built
// once from a parsed domain and shared read-only by every downstream
// component that needs to display or compare fluents/agents/actions by
// name (§3).
package ground

import (
	"fmt"

	"github.com/epistemicgo/episteme/internal/bits"
)

// Grounder is read-only after Freeze and is safe for concurrent reads
// from multiple search/portfolio workers (§5).
type Grounder struct {
	fluentByName map[string]bits.Fluent
	fluentByID   map[bits.Fluent]string
	agentByName  map[string]bits.Agent
	agentByID    map[bits.Agent]string
	actionByName map[string]bits.ActionID
	actionByID   map[bits.ActionID]string
	frozen       bool
}

// New returns an empty, writable Grounder.
func New() *Grounder {
	return &Grounder{
		fluentByName: make(map[string]bits.Fluent),
		fluentByID:   make(map[bits.Fluent]string),
		agentByName:  make(map[string]bits.Agent),
		agentByID:    make(map[bits.Agent]string),
		actionByName: make(map[string]bits.ActionID),
		actionByID:   make(map[bits.ActionID]string),
	}
}

// Freeze marks the grounder read-only; subsequent Add* calls panic.
func (g *Grounder) Freeze() { g.frozen = true }

func (g *Grounder) checkWritable() {
	if g.frozen {
		panic("ground: grounder is frozen, cannot register new names")
	}
}

// AddFluent assigns the next atom index to name if not already present.
func (g *Grounder) AddFluent(name string) bits.Fluent {
	if f, ok := g.fluentByName[name]; ok {
		return f
	}
	g.checkWritable()
	f := bits.NewFluent(uint32(len(g.fluentByName)))
	g.fluentByName[name] = f
	g.fluentByID[f] = name
	return f
}

// AddAgent assigns the next atom index to name if not already present.
func (g *Grounder) AddAgent(name string) bits.Agent {
	if a, ok := g.agentByName[name]; ok {
		return a
	}
	g.checkWritable()
	a := bits.Agent(len(g.agentByName))
	g.agentByName[name] = a
	g.agentByID[a] = name
	return a
}

// AddAction assigns the next atom index to name if not already present.
func (g *Grounder) AddAction(name string) bits.ActionID {
	if a, ok := g.actionByName[name]; ok {
		return a
	}
	g.checkWritable()
	a := bits.ActionID(len(g.actionByName))
	g.actionByName[name] = a
	g.actionByID[a] = name
	return a
}

// Fluent looks up a previously declared fluent name.
func (g *Grounder) Fluent(name string) (bits.Fluent, error) {
	f, ok := g.fluentByName[name]
	if !ok {
		return 0, fmt.Errorf("ground: undeclared fluent %q", name)
	}
	return f, nil
}

// Agent looks up a previously declared agent name.
func (g *Grounder) Agent(name string) (bits.Agent, error) {
	a, ok := g.agentByName[name]
	if !ok {
		return 0, fmt.Errorf("ground: undeclared agent %q", name)
	}
	return a, nil
}

// Action looks up a previously declared action name.
func (g *Grounder) Action(name string) (bits.ActionID, error) {
	a, ok := g.actionByName[name]
	if !ok {
		return 0, fmt.Errorf("ground: undeclared action %q", name)
	}
	return a, nil
}

// FluentName degrounds f back to its surface name, preserving polarity.
func (g *Grounder) FluentName(f bits.Fluent) string {
	name, ok := g.fluentByID[f.Normalize()]
	if !ok {
		return fmt.Sprintf("<fluent#%d>", f.Atom())
	}
	if f.Negated() {
		return "¬" + name
	}
	return name
}

// AgentName degrounds a back to its surface name.
func (g *Grounder) AgentName(a bits.Agent) string {
	name, ok := g.agentByID[a]
	if !ok {
		return fmt.Sprintf("<agent#%d>", a)
	}
	return name
}

// ActionName degrounds a back to its surface name.
func (g *Grounder) ActionName(a bits.ActionID) string {
	name, ok := g.actionByID[a]
	if !ok {
		return fmt.Sprintf("<action#%d>", a)
	}
	return name
}

// NumFluents returns the number of declared fluents.
func (g *Grounder) NumFluents() int { return len(g.fluentByName) }

// AllAgents returns every declared agent, in id order.
func (g *Grounder) AllAgents() bits.AgentSet {
	out := make(bits.AgentSet, len(g.agentByID))
	for a := range g.agentByID {
		out[a] = a
	}
	return out
}

// AllActionIDs returns every declared action id, in id order.
func (g *Grounder) AllActionIDs() []bits.ActionID {
	out := make([]bits.ActionID, len(g.actionByID))
	for a := range g.actionByID {
		out[a] = a
	}
	return out
}
