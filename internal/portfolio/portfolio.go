// Package portfolio implements §4.4's portfolio runner: one engine per
// configuration, racing on distinct goroutines with cooperative
// cancellation (§5.2), grounded on niceyeti-tabular's
// tabular/server/fastview/client.go `errgroup.WithContext` fan-out
// (swapped here for a result-racing group rather than an
// error-propagating one, since a losing configuration finishing with
// "no plan" is not itself an error).
package portfolio

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/epistemicgo/episteme/internal/appconfig"
	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/gnnclient"
	"github.com/epistemicgo/episteme/internal/heuristic"
	"github.com/epistemicgo/episteme/internal/kripke"
	"github.com/epistemicgo/episteme/internal/search"
)

// DefaultConfigs returns the fallback portfolio of §4.4 when no
// configuration file is given: BFS, DFS, and HeuristicFirst paired with
// each of the five heuristics.
func DefaultConfigs() []appconfig.Config {
	base := appconfig.Default()
	cfgs := []appconfig.Config{base}
	dfs := base
	dfs.Search = appconfig.DFS
	cfgs = append(cfgs, dfs)
	for _, h := range []heuristic.Kind{heuristic.Subgoals, heuristic.LPG, heuristic.SPG, heuristic.CPG, heuristic.GNN} {
		hfs := base
		hfs.Search = appconfig.HFS
		hfs.Heuristic = h
		cfgs = append(cfgs, hfs)
	}
	return cfgs
}

// Winner identifies which configuration produced the successful plan.
type Winner struct {
	Config appconfig.Config
	Result *search.Result
}

// Run races one Engine per configuration over the same initial state
// and shared read-only Domain/WorldStore/Grounder (§5.2); the first
// configuration to report a found plan cancels the rest via the shared
// atomic flag each Engine polls at the top of its loop. Returns the
// winner, or a nil Winner if every configuration exhausted its open
// list without success.
func Run(ctx context.Context, d *domain.Domain, store *kripke.WorldStore, allAgents bits.AgentSet, initial *kripke.State, configs []appconfig.Config, oracle *gnnclient.Client) (*Winner, error) {
	var cancel atomic.Bool
	var mu sync.Mutex
	var winner *Winner

	group, gctx := errgroup.WithContext(ctx)
	for _, cfg := range configs {
		cfg := cfg
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			if cfg.Search == appconfig.HFS && cfg.Heuristic == heuristic.GNN && oracle == nil {
				// No oracle configured: this entry cannot race, skip it
				// rather than failing the whole portfolio.
				return nil
			}

			eng := search.NewEngine(cfg.OpenList(), d, store)
			eng.CheckVisited = cfg.CheckVisited
			eng.Cancel = &cancel
			if cfg.Bisimulation {
				eng.Bisim = bisim.NewEngine()
				eng.BisimType = cfg.BisimType
			}
			if cfg.Search == appconfig.HFS {
				eng.Scorer = search.NewScorer(cfg.Heuristic, d, d.Goal, oracle)
			}

			res, err := eng.Run(initial)
			if err != nil {
				return err
			}
			if res.Found && cancel.CompareAndSwap(false, true) {
				mu.Lock()
				winner = &Winner{Config: cfg, Result: res}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return winner, nil
}
