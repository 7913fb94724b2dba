package bits

import "sort"

// Agent is a fixed-width atom index identifying a planning agent.
type Agent uint32

// ActionID is a fixed-width atom index identifying a grounded action.
type ActionID uint32

// AgentSet is a sorted, deduplicated set of agents.
type AgentSet []Agent

// NewAgentSet builds a sorted, deduplicated AgentSet.
func NewAgentSet(as ...Agent) AgentSet {
	out := append(AgentSet(nil), as...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) == 0 {
		return out
	}
	dedup := out[:1]
	for _, a := range out[1:] {
		if dedup[len(dedup)-1] != a {
			dedup = append(dedup, a)
		}
	}
	return dedup
}

// Contains reports whether a is a member of as.
func (as AgentSet) Contains(a Agent) bool {
	i := sort.Search(len(as), func(i int) bool { return as[i] >= a })
	return i < len(as) && as[i] == a
}

// Minus returns as without the members of other.
func (as AgentSet) Minus(other AgentSet) AgentSet {
	out := make(AgentSet, 0, len(as))
	for _, a := range as {
		if !other.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

// Equal reports whether as and other hold the same agents.
func (as AgentSet) Equal(other AgentSet) bool {
	if len(as) != len(other) {
		return false
	}
	for i := range as {
		if as[i] != other[i] {
			return false
		}
	}
	return true
}
