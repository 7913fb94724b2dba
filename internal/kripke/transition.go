package kripke

import (
	"sort"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
)

// Apply executes act against s, dispatching on act.Type, and returns the
// successor state (§4.1). allAgents is the domain's full agent set,
// needed to compute the oblivious partition.
func (s *State) Apply(store *WorldStore, act *domain.Action, allAgents bits.AgentSet) (*State, error) {
	if act.Type == domain.NotSet {
		return nil, &domain.CoreError{Code: domain.ExitActionTypeConflict, Message: "kripke: action " + act.Name + " has no established type at transition time"}
	}
	if !act.ExecutableAt(s.Entails) {
		return nil, &domain.CoreError{Code: domain.ExitActionNotExecutable, Message: "kripke: action " + act.Name + " is not executable at the pointed world"}
	}

	switch act.Type {
	case domain.Ontic:
		return s.applyOntic(store, act, allAgents)
	default:
		return s.applySensingOrAnnouncement(store, act, allAgents)
	}
}

// observantSet returns the agents (among allAgents) whose guard holds at
// the pointed world, per the action's observability map.
func (s *State) observantSet(guards map[bits.Agent]*belief.Formula) bits.AgentSet {
	var out []bits.Agent
	for a, guard := range guards {
		if s.Entails(guard) {
			out = append(out, a)
		}
	}
	return bits.NewAgentSet(out...)
}

// coneVia returns every world reachable from start using only edges
// labeled with an agent in agents (start itself always included, 0 hops).
func (s *State) coneVia(start WorldPointer, agents bits.AgentSet) map[uint64]WorldPointer {
	out := map[uint64]WorldPointer{start.Key(): start}
	queue := []WorldPointer{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, a := range agents {
			for _, w2 := range s.Accessible(cur, a) {
				if _, seen := out[w2.Key()]; !seen {
					out[w2.Key()] = w2
					queue = append(queue, w2)
				}
			}
		}
	}
	return out
}

func sortedKeys(m map[uint64]WorldPointer) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func effectSetAt(s *State, act *domain.Action) bits.FluentsSet {
	var lits []bits.Fluent
	for _, e := range act.Effects {
		if s.Entails(e.Guard) {
			lits = append(lits, e.Postcondition.Only()...)
		}
	}
	return bits.NewFluentsSet(lits...)
}

// applyOntic implements the ontic transition rule of §4.1.
func (s *State) applyOntic(store *WorldStore, act *domain.Action, allAgents bits.AgentSet) (*State, error) {
	fully := s.observantSet(act.FullyObservants)
	oblivious := allAgents.Minus(fully)
	effect := effectSetAt(s, act)

	obliviousCone := s.coneVia(s.Pointed, oblivious)
	fullyCone := s.coneVia(s.Pointed, fully)

	ns := &State{
		Worlds:   make(map[uint64]WorldPointer),
		Beliefs:  make(map[uint64]map[bits.Agent][]uint64),
		MaxDepth: s.MaxDepth + 1,
	}

	// Step 1: preserve the oblivious-reachable subgraph unchanged.
	for _, k := range sortedKeys(obliviousCone) {
		w := obliviousCone[k]
		ns.addWorld(w)
		for a, succs := range s.Beliefs[k] {
			for _, k2 := range succs {
				if w2, ok := obliviousCone[k2]; ok {
					ns.addEdge(w, a, w2)
				}
			}
		}
	}

	// Step 2: mint new worlds for the fully-observant cone.
	image := make(map[uint64]WorldPointer, len(fullyCone))
	for _, k := range sortedKeys(fullyCone) {
		old := fullyCone[k]
		newFluents := old.World.Fluents.WithEffects(effect)
		w2, err := store.Intern(newFluents)
		if err != nil {
			return nil, err
		}
		p2 := WorldPointer{World: w2, Repetition: old.Repetition}
		image[k] = p2
		ns.addWorld(p2)
	}

	// Step 3: mirror fully-agent edges among new worlds, and preserve
	// oblivious-agent edges from new worlds into the preserved subgraph.
	for _, k := range sortedKeys(fullyCone) {
		p2 := image[k]
		for _, a := range fully {
			for _, k2 := range s.Beliefs[k][a] {
				if target, ok := image[k2]; ok {
					ns.addEdge(p2, a, target)
				}
			}
		}
		for _, a := range oblivious {
			for _, k2 := range s.Beliefs[k][a] {
				if target, ok := obliviousCone[k2]; ok {
					ns.addEdge(p2, a, target)
				}
			}
		}
	}

	// Step 4: the new pointed world is the image of the old pointed world.
	ns.Pointed = image[s.Pointed.Key()]
	ns.pruneUnreachable()
	return ns, nil
}

// applySensingOrAnnouncement implements §4.1's shared sensing/announcement rule.
func (s *State) applySensingOrAnnouncement(store *WorldStore, act *domain.Action, allAgents bits.AgentSet) (*State, error) {
	fully := s.observantSet(act.FullyObservants)
	partially := s.observantSet(act.PartiallyObservants)
	oblivious := allAgents.Minus(fully).Minus(partially)
	ef := effectFormulaAt(s, act)

	obliviousCone := s.coneVia(s.Pointed, oblivious)
	fullPartial := bits.NewAgentSet(append(append([]bits.Agent{}, fully...), partially...)...)
	cone := s.coneVia(s.Pointed, fullPartial)

	ns := &State{
		Worlds:  make(map[uint64]WorldPointer),
		Beliefs: make(map[uint64]map[bits.Agent][]uint64),
	}
	ns.MaxDepth = s.MaxDepth
	if len(oblivious) > 0 {
		ns.MaxDepth++
	}

	for _, k := range sortedKeys(obliviousCone) {
		w := obliviousCone[k]
		ns.addWorld(w)
		for a, succs := range s.Beliefs[k] {
			for _, k2 := range succs {
				if w2, ok := obliviousCone[k2]; ok {
					ns.addEdge(w, a, w2)
				}
			}
		}
	}

	image := make(map[uint64]WorldPointer, len(cone))
	for _, k := range sortedKeys(cone) {
		old := cone[k]
		w2, err := store.Intern(old.World.Fluents) // sensing does not change fluents
		if err != nil {
			return nil, err
		}
		p2 := WorldPointer{World: w2, Repetition: old.Repetition}
		image[k] = p2
		ns.addWorld(p2)
	}

	for _, k := range sortedKeys(cone) {
		p2 := image[k]
		w := cone[k]
		for a, succs := range s.Beliefs[k] {
			for _, k2 := range succs {
				w2, ok := cone[k2]
				if ok {
					target := image[k2]
					switch {
					case fully.Contains(a):
						if s.EntailsAt(w, ef) == s.EntailsAt(w2, ef) {
							ns.addEdge(p2, a, target)
						}
					case partially.Contains(a):
						ns.addEdge(p2, a, target)
					default:
						ns.addEdge(p2, a, target)
					}
					continue
				}
				if w2, ok := obliviousCone[k2]; ok && oblivious.Contains(a) {
					ns.addEdge(p2, a, w2)
				}
			}
		}
	}

	ns.Pointed = image[s.Pointed.Key()]
	ns.pruneUnreachable()
	return ns, nil
}

// effectFormulaAt builds the belief formula asserting the sensed/
// announced fluent formula, used by EntailsAt to test each world's
// truth value for the edge-filtering rule. Only effects whose guard is
// entailed at the pointed world contribute, mirroring effectSetAt.
func effectFormulaAt(s *State, act *domain.Action) *belief.Formula {
	var ff bits.FluentFormula
	for _, e := range act.Effects {
		if s.Entails(e.Guard) {
			ff = append(ff, e.Postcondition...)
		}
	}
	return belief.Fluent(ff)
}
