// Package kripke implements the pointed Kripke-model representation
// and transition semantics of §4.1: content-addressed world sharing
// via a process-wide store, per-agent accessibility, and the
// ontic/sensing/announcement update rules that preserve S5 for fully
// observant agents while allowing partial/oblivious branching.
package kripke

import (
	"hash/fnv"

	"github.com/epistemicgo/episteme/internal/bits"
)

// WorldID is the stable content-addressed identity of a KripkeWorld:
// the hash of its fluent set (§3).
type WorldID uint64

// KripkeWorld is a value object: an immutable fluent set plus its
// cached id. Two worlds are equal iff their ids are equal (§3, §8
// property 2 — world interning).
type KripkeWorld struct {
	ID      WorldID
	Fluents bits.FluentsSet
}

func hashFluents(fs bits.FluentsSet) WorldID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fs.Key()))
	return WorldID(h.Sum64())
}

// newWorld builds a KripkeWorld, computing its id. Construction of an
// inconsistent world is a fatal error per §3; callers must check
// Consistent() themselves (the store enforces it in Intern).
func newWorld(fs bits.FluentsSet) KripkeWorld {
	return KripkeWorld{ID: hashFluents(fs), Fluents: fs}
}

// Repetition disambiguates otherwise-identical fluent assignments that
// arose from partial-observation branching at different depths; it is
// an opaque tag and must never be interpreted (§3).
type Repetition uint16

// WorldPointer is a handle into a KripkeWorldStore: a content-addressed
// world reference plus a repetition tag. Order and equality use
// (world.id × 1000) + repetition, computed in uint64 without further
// hashing.
type WorldPointer struct {
	World      *KripkeWorld
	Repetition Repetition
}

// Key returns the opaque, comparable identity of the pointer, suitable
// for use as a map key throughout this package.
func (p WorldPointer) Key() uint64 {
	return uint64(p.World.ID)*1000 + uint64(p.Repetition)
}

// Equal reports whether two pointers reference the same world+repetition.
func (p WorldPointer) Equal(q WorldPointer) bool {
	return p.Key() == q.Key()
}
