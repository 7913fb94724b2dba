// Package appconfig is the ambient layered-configuration concern of
// SPEC_FULL.md §B, grounded on niceyeti-tabular's
// tabular/reinforcement/learning.go `FromYaml` (a per-call `viper.New()`
// rather than the package-global viper singleton, plus `EPISTEME_*`
// env-var overrides via `BindEnv`/`AutomaticEnv` for CI use).
package appconfig

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/heuristic"
	"github.com/epistemicgo/episteme/internal/search"
)

// SearchKind names one of the four CLI-selectable search strategies of
// §6 (`--search {BFS|DFS|IDFS|HFS}`). None of them selects the A* open
// list (search.NewAStar), neither here nor in the portfolio lists.
type SearchKind string

const (
	BFS  SearchKind = "BFS"
	DFS  SearchKind = "DFS"
	IDFS SearchKind = "IDFS"
	HFS  SearchKind = "HFS"
)

// Config is one fully-resolved run configuration: a search strategy, a
// heuristic (meaningful only for HFS), bisimulation on/off and variant,
// and the visited-check toggle (§4.4, §6).
type Config struct {
	Search           SearchKind
	Heuristic        heuristic.Kind
	Bisimulation     bool
	BisimType        bisim.Type
	CheckVisited     bool
	IDFSInitialCap   int
	IDFSStep         int
	ParallelBFS      bool
	ParallelWorkers  int
}

// Default returns the CLI's documented defaults: BFS, SUBGOALS,
// bisimulation off, visited-check off (§6).
func Default() Config {
	return Config{
		Search:         BFS,
		Heuristic:      heuristic.Subgoals,
		BisimType:      bisim.FastBisimulationType,
		IDFSInitialCap: 2,
		IDFSStep:       1,
	}
}

// Load layers CLI-flag values (already bound into vp by the cobra
// command) over environment-variable overrides prefixed EPISTEME_,
// mirroring tabular's viper-per-config-object pattern rather than a
// process-wide singleton.
func Load(vp *viper.Viper) (Config, error) {
	cfg := Default()
	vp.SetEnvPrefix("EPISTEME")
	vp.AutomaticEnv()

	if v := vp.GetString("search"); v != "" {
		s := SearchKind(v)
		switch s {
		case BFS, DFS, IDFS, HFS:
			cfg.Search = s
		default:
			return cfg, fmt.Errorf("appconfig: unknown --search %q", v)
		}
	}
	if v := vp.GetString("heuristic"); v != "" {
		k, err := heuristic.ParseKind(v)
		if err != nil {
			return cfg, err
		}
		cfg.Heuristic = k
	}
	cfg.Bisimulation = vp.GetBool("bis")
	if v := vp.GetString("bis_type"); v != "" {
		switch v {
		case "FB":
			cfg.BisimType = bisim.FastBisimulationType
		case "PT":
			cfg.BisimType = bisim.PaigeTarjanType
		default:
			return cfg, fmt.Errorf("appconfig: unknown --bis_type %q", v)
		}
	}
	cfg.CheckVisited = vp.GetBool("check_visited")
	cfg.ParallelBFS = vp.GetBool("parallel")
	if w := vp.GetInt("workers"); w > 0 {
		cfg.ParallelWorkers = w
	}
	return cfg, nil
}

// OpenList builds the open-list strategy this configuration selects
// (§4.4). HFS always yields the HeuristicFirst list, whatever the
// heuristic; no configuration yields A*.
func (c Config) OpenList() search.OpenList {
	switch c.Search {
	case DFS:
		return search.NewDFS()
	case IDFS:
		return search.NewIDDFS(c.IDFSInitialCap, c.IDFSStep)
	case HFS:
		return search.NewHeuristicFirst()
	default:
		return search.NewBFS()
	}
}
