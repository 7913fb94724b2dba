package pgraph

import (
	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bits"
)

// applyOnticEffects decides whether bf becomes newly entailed given an
// ontic effect whose acting agents' full-observance is fullyObs (§4.3
// step 2, ontic case): a B(a,φ) upgrades if a is fully observant and φ
// upgrades; E/C/D upgrade only if every named agent is fully observant;
// propositional combinators recurse classically. Negation is evaluated
// against the current (not newly-upgraded) knowledge, since truth of a
// negated formula is not monotonic under this relaxation.
func applyOnticEffects(level *StateLevel, bf *belief.Formula, fullyObs bits.AgentSet) bool {
	switch bf.Kind {
	case belief.KindEmpty:
		return true
	case belief.KindFluent:
		return Holds(level, bf)
	case belief.KindB:
		if fullyObs.Contains(bf.Agent) {
			return applyOnticEffects(level, bf.Sub[0], fullyObs)
		}
		return Holds(level, bf)
	case belief.KindE, belief.KindC, belief.KindD:
		for _, a := range bf.Agents {
			if !fullyObs.Contains(a) {
				return Holds(level, bf)
			}
		}
		return applyOnticEffects(level, bf.Sub[0], fullyObs)
	case belief.KindProp:
		switch bf.Op {
		case belief.OpNot:
			return !Holds(level, bf.Sub[0])
		case belief.OpAnd:
			return applyOnticEffects(level, bf.Sub[0], fullyObs) && applyOnticEffects(level, bf.Sub[1], fullyObs)
		case belief.OpOr:
			return applyOnticEffects(level, bf.Sub[0], fullyObs) || applyOnticEffects(level, bf.Sub[1], fullyObs)
		}
	}
	return false
}

// applyEpistemicEffects decides whether bf becomes newly entailed given
// a single sensed/announced literal (§4.3 step 2, sensing/announcement
// case). vis tracks how the sensed literal distinguishes worlds as the
// recursion descends through observers: 0 at entry, 1 once under a
// fully-observant B/C/E/D, 2 once under a partially-observant one.
func applyEpistemicEffects(level *StateLevel, literal bits.Fluent, bf *belief.Formula, fully, partially bits.AgentSet, vis int) bool {
	switch bf.Kind {
	case belief.KindEmpty:
		return true
	case belief.KindFluent:
		if Holds(level, bf) {
			return true
		}
		for _, disj := range bf.FF {
			for _, lit := range disj {
				if lit == literal && vis <= 1 {
					return true
				}
				if vis == 1 && lit == literal.Negate() {
					return true
				}
			}
		}
		return false
	case belief.KindB:
		switch {
		case fully.Contains(bf.Agent):
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, 1)
		case partially.Contains(bf.Agent):
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, 2)
		default:
			return Holds(level, bf)
		}
	case belief.KindE, belief.KindC, belief.KindD:
		allFully, allObservant := true, true
		for _, a := range bf.Agents {
			if !fully.Contains(a) {
				allFully = false
			}
			if !fully.Contains(a) && !partially.Contains(a) {
				allObservant = false
			}
		}
		switch {
		case allFully:
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, 1)
		case allObservant:
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, 2)
		default:
			return Holds(level, bf)
		}
	case belief.KindProp:
		switch bf.Op {
		case belief.OpNot:
			return !Holds(level, bf.Sub[0])
		case belief.OpAnd:
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, vis) &&
				applyEpistemicEffects(level, literal, bf.Sub[1], fully, partially, vis)
		case belief.OpOr:
			return applyEpistemicEffects(level, literal, bf.Sub[0], fully, partially, vis) ||
				applyEpistemicEffects(level, literal, bf.Sub[1], fully, partially, vis)
		}
	}
	return false
}
