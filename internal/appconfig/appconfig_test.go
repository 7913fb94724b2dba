package appconfig

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/heuristic"
)

func TestLoadDefaults(t *testing.T) {
	vp := viper.New()
	cfg, err := Load(vp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search != BFS {
		t.Fatalf("expected default search BFS, got %v", cfg.Search)
	}
	if cfg.Heuristic != heuristic.Subgoals {
		t.Fatalf("expected default heuristic SUBGOALS, got %v", cfg.Heuristic)
	}
	if cfg.Bisimulation {
		t.Fatalf("expected bisimulation off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	vp := viper.New()
	vp.Set("search", "DFS")
	vp.Set("heuristic", "L_PG")
	vp.Set("bis", true)
	vp.Set("bis_type", "PT")
	vp.Set("check_visited", true)

	cfg, err := Load(vp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search != DFS {
		t.Fatalf("expected DFS, got %v", cfg.Search)
	}
	if cfg.Heuristic != heuristic.LPG {
		t.Fatalf("expected L_PG, got %v", cfg.Heuristic)
	}
	if !cfg.Bisimulation || cfg.BisimType != bisim.PaigeTarjanType {
		t.Fatalf("expected bisimulation enabled with PT, got %+v", cfg)
	}
	if !cfg.CheckVisited {
		t.Fatalf("expected check_visited true")
	}
}

func TestLoadRejectsUnknownSearch(t *testing.T) {
	vp := viper.New()
	vp.Set("search", "nonsense")
	if _, err := Load(vp); err == nil {
		t.Fatalf("expected error for unknown search strategy")
	}
}

func TestOpenListSelectsStrategy(t *testing.T) {
	cases := map[SearchKind]string{
		BFS:  "BFS",
		DFS:  "DFS",
		IDFS: "IDDFS",
		HFS:  "HFS",
	}
	for kind, wantName := range cases {
		cfg := Default()
		cfg.Search = kind
		if got := cfg.OpenList().Name(); got != wantName {
			t.Errorf("%v: OpenList().Name() = %q, want %q", kind, got, wantName)
		}
	}
}
