package bisim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistemicgo/episteme/internal/belief"
	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
)

func twoAgentDomain(t *testing.T) *domain.Domain {
	t.Helper()
	g := ground.New()
	p := g.AddFluent("p")
	g.AddAgent("a")
	g.AddAgent("b")
	g.Freeze()
	return &domain.Domain{
		Grounder:  g,
		Fluents:   []bits.Fluent{p},
		Agents:    bits.NewAgentSet(0, 1),
		Initially: belief.FormulaeList{belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(p)})},
	}
}

func buildState(t *testing.T) *kripke.State {
	t.Helper()
	d := twoAgentDomain(t)
	store := kripke.NewWorldStore()
	s, err := kripke.BuildInitial(store, d)
	require.NoError(t, err)
	return s
}

func TestEncodeDecodeRoundTripIsomorphic(t *testing.T) {
	s := buildState(t)
	g := bisim.Encode(s)
	s2 := g.Decode()
	assert.Equal(t, s.TotalOrderKey(), s2.TotalOrderKey(), "encode/decode without refinement must be isomorphic")
}

func TestQuotientNeverIncreasesWorldCount(t *testing.T) {
	s := buildState(t)
	e := bisim.NewEngine()
	contracted, applied := e.Contract(s, bisim.FastBisimulationType)
	require.True(t, applied)
	assert.LessOrEqual(t, len(contracted.Worlds), len(s.Worlds))
}

func TestContractPreservesPointedEntailment(t *testing.T) {
	s := buildState(t)
	e := bisim.NewEngine()
	contracted, applied := e.Contract(s, bisim.FastBisimulationType)
	require.True(t, applied)
	assert.Equal(t, s.Pointed.World.Fluents.Key(), contracted.Pointed.World.Fluents.Key())
}

func TestContractIsIdempotent(t *testing.T) {
	s := buildState(t)
	e := bisim.NewEngine()
	once, applied := e.Contract(s, bisim.FastBisimulationType)
	require.True(t, applied)
	twice, applied := e.Contract(once, bisim.FastBisimulationType)
	require.True(t, applied)
	assert.Equal(t, once.TotalOrderKey(), twice.TotalOrderKey(), "bisim(bisim(S)) must equal bisim(S)")
}

func TestPaigeTarjanAndFastBisimulationAgreeOnBlockCount(t *testing.T) {
	s := buildState(t)
	g := bisim.Encode(s)
	pt := bisim.PaigeTarjan(g)
	fb := bisim.FastBisimulation(g)
	blocks := func(p bisim.Partition) int {
		seen := make(map[int]bool)
		for _, id := range p {
			seen[id] = true
		}
		return len(seen)
	}
	assert.Equal(t, blocks(pt), blocks(fb), "both refinement strategies must converge to the same number of blocks")
}

func TestVerifyEquivalenceAcceptsContraction(t *testing.T) {
	s := buildState(t)
	e := bisim.NewEngine()
	contracted, applied := e.Contract(s, bisim.FastBisimulationType)
	require.True(t, applied)

	f := belief.Fluent(bits.FluentFormula{bits.NewFluentsSet(s.Pointed.World.Fluents[0])})
	assert.True(t, bisim.VerifyEquivalence(s, contracted, belief.FormulaeList{f}))
}
