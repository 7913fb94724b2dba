// Package bits implements the fixed-width bitset primitives that every
// other package builds on: fluents, agents, and action ids, plus the
// FluentsSet/FluentFormula conjunction/disjunction containers.
package bits

import "sort"

// Fluent is a fixed-width bit vector: the high bit (bit 31) carries
// polarity (0 = positive, 1 = negated) and the low 31 bits carry the
// grounded atom index assigned by the grounder.
type Fluent uint32

const negBit Fluent = 1 << 31

// Atom returns the positive atom index encoded by f, discarding polarity.
func (f Fluent) Atom() uint32 {
	return uint32(f &^ negBit)
}

// Negated reports whether f carries negative polarity.
func (f Fluent) Negated() bool {
	return f&negBit != 0
}

// Negate flips polarity. Negate(Negate(f)) == f for all f.
func (f Fluent) Negate() Fluent {
	return f ^ negBit
}

// Normalize clears polarity, returning the positive form of the atom.
func (f Fluent) Normalize() Fluent {
	return f &^ negBit
}

// NewFluent builds a positive fluent for the given atom index.
func NewFluent(atom uint32) Fluent {
	return Fluent(atom)
}

// Less provides a total order over fluents (positive atom, then polarity),
// used to keep FluentsSet contents sorted and comparable.
func (f Fluent) Less(g Fluent) bool {
	if f.Atom() != g.Atom() {
		return f.Atom() < g.Atom()
	}
	return !f.Negated() && g.Negated()
}

// FluentsSet is an ordered, deduplicated conjunction of fluents. A
// consistent FluentsSet never holds both a fluent and its negation.
type FluentsSet []Fluent

// NewFluentsSet builds a sorted, deduplicated FluentsSet from fs.
func NewFluentsSet(fs ...Fluent) FluentsSet {
	out := append(FluentsSet(nil), fs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	out = dedupSorted(out)
	return out
}

func dedupSorted(fs FluentsSet) FluentsSet {
	if len(fs) == 0 {
		return fs
	}
	out := fs[:1]
	for _, f := range fs[1:] {
		if out[len(out)-1] != f {
			out = append(out, f)
		}
	}
	return out
}

// Consistent reports whether the set contains no fluent together with
// its negation.
func (fs FluentsSet) Consistent() bool {
	seen := make(map[Fluent]bool, len(fs))
	for _, f := range fs {
		seen[f] = true
	}
	for _, f := range fs {
		if seen[f.Negate()] {
			return false
		}
	}
	return true
}

// Contains reports whether f is a member of fs.
func (fs FluentsSet) Contains(f Fluent) bool {
	i := sort.Search(len(fs), func(i int) bool { return !fs[i].Less(f) })
	return i < len(fs) && fs[i] == f
}

// SubsetOf reports whether every member of fs is also a member of other,
// i.e. other |= fs as a conjunction (other entails every fact of fs).
func (fs FluentsSet) SubsetOf(other FluentsSet) bool {
	for _, f := range fs {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

// Union returns the sorted, deduplicated union of fs and other.
func (fs FluentsSet) Union(other FluentsSet) FluentsSet {
	return NewFluentsSet(append(append(FluentsSet(nil), fs...), other...)...)
}

// WithEffects returns a copy of fs with every literal of effect applied:
// each literal's negation is removed and the literal itself is added.
func (fs FluentsSet) WithEffects(effect FluentsSet) FluentsSet {
	out := make(FluentsSet, 0, len(fs)+len(effect))
	neg := make(map[Fluent]bool, len(effect))
	for _, e := range effect {
		neg[e.Negate()] = true
	}
	for _, f := range fs {
		if !neg[f] {
			out = append(out, f)
		}
	}
	out = append(out, effect...)
	return NewFluentsSet(out...)
}

// Equal reports structural equality of two (already-sorted) sets.
func (fs FluentsSet) Equal(other FluentsSet) bool {
	if len(fs) != len(other) {
		return false
	}
	for i := range fs {
		if fs[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical, comparable string usable as a map key.
func (fs FluentsSet) Key() string {
	b := make([]byte, 0, len(fs)*5)
	for i, f := range fs {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendUint(b, uint32(f))
	}
	return string(b)
}

func appendUint(b []byte, v uint32) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}

// FluentFormula is a disjunction of conjunctions (DNF): a set of
// FluentsSet. The core restricts action effects and goal fluent parts
// to a single disjunct; FluentFormula still models the general shape so
// that non-singleton configuration errors can be detected uniformly.
type FluentFormula []FluentsSet

// Singleton reports whether ff has exactly one disjunct, as required of
// action effects and of fluent parts of goals.
func (ff FluentFormula) Singleton() bool {
	return len(ff) == 1
}

// Entails reports whether at least one disjunct of ff is a subset of w.
func (ff FluentFormula) Entails(w FluentsSet) bool {
	if len(ff) == 0 {
		return true // empty fluent formula is vacuously true (§8 boundary behaviour)
	}
	for _, disj := range ff {
		if disj.SubsetOf(w) {
			return true
		}
	}
	return false
}

// Only returns the sole disjunct of a singleton formula. Callers must
// check Singleton() first; Only panics otherwise since this indicates a
// NonDeterminismUnsupported configuration error that should have been
// rejected during domain construction.
func (ff FluentFormula) Only() FluentsSet {
	if !ff.Singleton() {
		panic("bits: FluentFormula.Only called on non-singleton formula")
	}
	return ff[0]
}
