package kripke

import (
	"sort"

	"github.com/epistemicgo/episteme/internal/bits"
)

// State is the pointed Kripke model of §3: a set of world pointers, a
// distinguished pointed pointer, a per-agent accessibility relation,
// and the maxDepth bound used to mint fresh repetition tags.
type State struct {
	Worlds   map[uint64]WorldPointer
	Pointed  WorldPointer
	Beliefs  map[uint64]map[bits.Agent][]uint64
	MaxDepth uint32
}

// NewState builds an empty state around the given pointed world; callers
// populate Worlds/Beliefs afterwards (used by the initial-state builder
// and by transition.go's successor construction).
func NewState(pointed WorldPointer) *State {
	s := &State{
		Worlds:  make(map[uint64]WorldPointer),
		Pointed: pointed,
		Beliefs: make(map[uint64]map[bits.Agent][]uint64),
	}
	s.Worlds[pointed.Key()] = pointed
	return s
}

// addWorld registers w in the world set if not already present.
func (s *State) addWorld(w WorldPointer) {
	if _, ok := s.Worlds[w.Key()]; !ok {
		s.Worlds[w.Key()] = w
	}
}

// addEdge adds w -> w2 to agent a's accessibility relation, deduplicated.
func (s *State) addEdge(w WorldPointer, a bits.Agent, w2 WorldPointer) {
	s.addWorld(w)
	s.addWorld(w2)
	m, ok := s.Beliefs[w.Key()]
	if !ok {
		m = make(map[bits.Agent][]uint64)
		s.Beliefs[w.Key()] = m
	}
	for _, existing := range m[a] {
		if existing == w2.Key() {
			return
		}
	}
	m[a] = append(m[a], w2.Key())
}

// Accessible returns the worlds agent a considers possible from w.
func (s *State) Accessible(w WorldPointer, a bits.Agent) []WorldPointer {
	keys := s.Beliefs[w.Key()][a]
	out := make([]WorldPointer, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.Worlds[k])
	}
	return out
}

// pruneUnreachable discards worlds and edges not reachable from Pointed,
// restoring the §3 invariant that every world lies on some path from the
// pointed world.
func (s *State) pruneUnreachable() {
	reachable := map[uint64]bool{s.Pointed.Key(): true}
	queue := []uint64{s.Pointed.Key()}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, succs := range s.Beliefs[k] {
			for _, k2 := range succs {
				if !reachable[k2] {
					reachable[k2] = true
					queue = append(queue, k2)
				}
			}
		}
	}

	for k := range s.Worlds {
		if !reachable[k] {
			delete(s.Worlds, k)
			delete(s.Beliefs, k)
		}
	}
	for k, byAgent := range s.Beliefs {
		if !reachable[k] {
			delete(s.Beliefs, k)
			continue
		}
		for a, succs := range byAgent {
			filtered := succs[:0]
			for _, k2 := range succs {
				if reachable[k2] {
					filtered = append(filtered, k2)
				}
			}
			byAgent[a] = filtered
		}
	}
}

// SortedWorldKeys returns the state's world keys in ascending order, for
// deterministic iteration (rendering, hashing, total ordering).
func (s *State) SortedWorldKeys() []uint64 {
	keys := make([]uint64, 0, len(s.Worlds))
	for k := range s.Worlds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// TotalOrderKey returns a value usable to totally order search states by
// (pointed, worlds, beliefs), per §3's Search-state comparison rule.
func (s *State) TotalOrderKey() string {
	b := make([]byte, 0, 64)
	b = appendU64(b, s.Pointed.Key())
	b = append(b, '|')
	for _, k := range s.SortedWorldKeys() {
		b = appendU64(b, k)
		b = append(b, ',')
	}
	b = append(b, '|')
	for _, k := range s.SortedWorldKeys() {
		agents := s.Beliefs[k]
		as := make([]int, 0, len(agents))
		for a := range agents {
			as = append(as, int(a))
		}
		sort.Ints(as)
		for _, a := range as {
			succs := append([]uint64(nil), agents[bits.Agent(a)]...)
			sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
			b = appendU64(b, k)
			b = append(b, ':')
			b = append(b, byte('a'), byte(a))
			b = append(b, '=')
			for _, s2 := range succs {
				b = appendU64(b, s2)
				b = append(b, '.')
			}
			b = append(b, ';')
		}
	}
	return string(b)
}

func appendU64(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}

// Clone returns a deep-enough copy of s for copy-on-write successor
// construction: world pointers are immutable value handles into the
// shared arena, so only the owning maps need copying (§9 design notes).
func (s *State) Clone() *State {
	c := &State{
		Worlds:   make(map[uint64]WorldPointer, len(s.Worlds)),
		Pointed:  s.Pointed,
		Beliefs:  make(map[uint64]map[bits.Agent][]uint64, len(s.Beliefs)),
		MaxDepth: s.MaxDepth,
	}
	for k, v := range s.Worlds {
		c.Worlds[k] = v
	}
	for k, byAgent := range s.Beliefs {
		m := make(map[bits.Agent][]uint64, len(byAgent))
		for a, succs := range byAgent {
			m[a] = append([]uint64(nil), succs...)
		}
		c.Beliefs[k] = m
	}
	return c
}
