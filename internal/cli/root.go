// Package cli is the cobra command tree of §6, grounded on the
// teacher's cmd package (`sequenceCmd`'s `init()`-registered flags and
// `RunE` idiom), rebuilt around the planner's own flags and collaborators
// instead of the teacher's Mermaid renderer. Distinct storage backs
// --search and --bis_type (§9 REDESIGN FLAGS: the teacher's
// `m_search_strategy` field backing both is a copy-paste bug, not
// reproduced here).
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epistemicgo/episteme/internal/appconfig"
	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/dataset"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/gnnclient"
	"github.com/epistemicgo/episteme/internal/kripke"
	"github.com/epistemicgo/episteme/internal/obslog"
	"github.com/epistemicgo/episteme/internal/planexec"
	"github.com/epistemicgo/episteme/internal/portfolio"
	"github.com/epistemicgo/episteme/internal/search"
)

var vp = viper.New()

// rootCmd is the planner's entry point: a positional domain-file
// argument plus the flags of §6.
var rootCmd = &cobra.Command{
	Use:   "episteme <domain-file>",
	Short: "Epistemic planner: search for action sequences over multi-agent Kripke states",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("search", "BFS", "search strategy: BFS|DFS|IDFS|HFS")
	flags.String("heuristic", "SUBGOALS", "heuristic for HFS/A*: SUBGOALS|L_PG|S_PG|C_PG|GNN")
	flags.Bool("bis", false, "enable bisimulation contraction after every state update")
	flags.String("bis_type", "FB", "bisimulation variant: FB|PT")
	flags.Bool("check_visited", false, "enable closed-set deduplication")
	flags.Int("dataset-size", 0, "dump this many visited states as DOT pairs for GNN training (0 disables)")
	flags.StringSlice("execute-actions", nil, "validate this action-name sequence instead of searching")
	flags.Bool("execute", false, "validate the plan loaded via --plan-file instead of searching")
	flags.String("plan-file", "", "plan file to load with --execute (one action name per line)")
	flags.String("results_file", "", "write timing/plan results alongside the plan")
	flags.Bool("log", false, "redirect output to log/<domainStem>_<timestamp>[_n].log")
	flags.String("portfolio-file", "", "portfolio configuration file (§4.4); triggers portfolio mode")
	flags.Bool("portfolio", false, "run the default portfolio of configurations instead of a single one")
	flags.Bool("parallel", false, "use parallel BFS workers instead of a sequential engine (BFS only, §5)")
	flags.Int("workers", 4, "worker count for --parallel")
	flags.String("gnn-script", "", "path to the external GNN oracle script (required by the GNN heuristic)")
	flags.String("gnn-workdir", "gnn-scratch", "scratch directory for GNN oracle request/response files")
	flags.String("dataset-dir", "dataset", "output directory for --dataset-size dumps")

	_ = vp.BindPFlags(flags)
}

// Execute runs the command tree; cmd/episteme's main defers to this.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	domainPath := args[0]
	start := time.Now()

	logger := obslog.New()
	if useLog, _ := cmd.Flags().GetBool("log"); useLog {
		f, path, err := obslog.OpenLogFile(domainPath, start)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = obslog.NewFile(f)
		logger.Info().Str("log_file", path).Msg("redirected output to log file")
	}

	cfg, err := appconfig.Load(vp)
	if err != nil {
		logger.Error().Err(err).Msg("configuration error")
		return err
	}

	d, err := domain.Load(domainPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load domain file")
		return err
	}
	d.Grounder.Freeze()

	store := kripke.NewWorldStore()
	initial, err := kripke.BuildInitial(store, d)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build initial state")
		return err
	}

	var bisimEngine *bisim.Engine
	if cfg.Bisimulation {
		bisimEngine = bisim.NewEngine()
		if c, applied := bisimEngine.Contract(initial, cfg.BisimType); applied {
			initial = c
		}
	}

	if execActions, _ := cmd.Flags().GetStringSlice("execute-actions"); len(execActions) > 0 {
		return runExecute(cmd, d, store, initial, execActions, bisimEngine, cfg.BisimType)
	}
	if doExec, _ := cmd.Flags().GetBool("execute"); doExec {
		planFile, _ := cmd.Flags().GetString("plan-file")
		names, err := planexec.ReadPlanFile(planFile)
		if err != nil {
			logger.Error().Err(err).Msg("failed to read plan file")
			return err
		}
		return runExecute(cmd, d, store, initial, names, bisimEngine, cfg.BisimType)
	}

	if initial.EntailsAll(d.Goal) {
		logger.Warn().Msg("initial state already entails the goal")
		return &domain.CoreError{Code: domain.ExitInitialAlreadyGoal, Message: "initial state already satisfies the goal"}
	}

	if size, _ := cmd.Flags().GetInt("dataset-size"); size > 0 {
		dir, _ := cmd.Flags().GetString("dataset-dir")
		return runDataset(d, store, initial, size, dir)
	}

	if portfolioMode, _ := cmd.Flags().GetBool("portfolio"); portfolioMode {
		return runPortfolio(cmd, logger, d, store, initial, nil)
	}
	if pf, _ := cmd.Flags().GetString("portfolio-file"); pf != "" {
		configs, err := portfolio.LoadConfigFile(pf)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load portfolio config file")
			return err
		}
		return runPortfolio(cmd, logger, d, store, initial, configs)
	}

	return runSingle(cmd, logger, d, store, initial, cfg, start)
}

func oracleFromFlags(cmd *cobra.Command) *gnnclient.Client {
	script, _ := cmd.Flags().GetString("gnn-script")
	if script == "" {
		return nil
	}
	workdir, _ := cmd.Flags().GetString("gnn-workdir")
	return gnnclient.New(script, workdir)
}

func runSingle(cmd *cobra.Command, logger zerolog.Logger, d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, cfg appconfig.Config, start time.Time) error {
	eng := search.NewEngine(cfg.OpenList(), d, store)
	eng.CheckVisited = cfg.CheckVisited
	if cfg.Bisimulation {
		eng.Bisim = bisim.NewEngine()
		eng.BisimType = cfg.BisimType
	}
	if cfg.Search == appconfig.HFS {
		eng.Scorer = search.NewScorer(cfg.Heuristic, d, d.Goal, oracleFromFlags(cmd))
	}

	var result *search.Result
	var err error
	if cfg.ParallelBFS && cfg.Search == appconfig.BFS {
		result, err = search.ParallelBFS(&search.ParallelConfig{
			Domain: d, Store: store, AllAgents: d.Agents,
			Workers: cfg.ParallelWorkers, CheckVisited: cfg.CheckVisited,
			Bisimulation: cfg.Bisimulation, BisimType: cfg.BisimType,
		}, initial)
	} else {
		result, err = eng.Run(initial)
	}
	if err != nil {
		logger.Error().Err(err).Msg("search failed")
		return err
	}

	elapsed := time.Since(start)
	return reportResult(cmd, logger, d, result, elapsed)
}

func runPortfolio(cmd *cobra.Command, logger zerolog.Logger, d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, configs []appconfig.Config) error {
	if configs == nil {
		configs = portfolio.DefaultConfigs()
	}
	start := time.Now()
	winner, err := portfolio.Run(cmd.Context(), d, store, d.Agents, initial, configs, oracleFromFlags(cmd))
	if err != nil {
		logger.Error().Err(err).Msg("portfolio run failed")
		return err
	}
	elapsed := time.Since(start)
	if winner == nil {
		logger.Warn().Msg("no configuration found a plan")
		return reportResult(cmd, logger, d, &search.Result{}, elapsed)
	}
	logger.Info().Str("search", string(winner.Config.Search)).Str("heuristic", string(winner.Config.Heuristic)).Msg("portfolio winner")
	return reportResult(cmd, logger, d, winner.Result, elapsed)
}

func runExecute(cmd *cobra.Command, d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, names []string, bisimEngine *bisim.Engine, bisimType bisim.Type) error {
	report, err := planexec.Execute(d, store, initial, names, bisimEngine, bisimType)
	if err != nil {
		return err
	}
	planexec.WriteDOT(cmd.OutOrStdout(), report, d)
	if !report.Valid {
		return fmt.Errorf("planexec: plan validation failed at step %d", len(report.Steps))
	}
	return nil
}

func runDataset(d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, size int, dir string) error {
	dumper, err := dataset.NewDumper(dir)
	if err != nil {
		return err
	}
	if err := dumper.DumpGoalTree(d.Goal, d.Grounder); err != nil {
		return err
	}

	if _, err := dumper.DumpState(initial, d.Grounder); err != nil {
		return err
	}
	return walkAndDump(d, store, initial, size, dumper)
}

// walkAndDump explores the reachable state graph breadth-first,
// dumping each newly-discovered state until size states have been
// written, mirroring the Domain/Store/AllAgents expansion step of
// search.Engine.Run without the goal check or open-list strategy a
// dataset-collection walk has no use for.
func walkAndDump(d *domain.Domain, store *kripke.WorldStore, initial *kripke.State, size int, dumper *dataset.Dumper) error {
	queue := []*kripke.State{initial}
	visitedKeys := map[string]bool{initial.TotalOrderKey(): true}
	count := 1
	for len(queue) > 0 && count < size {
		cur := queue[0]
		queue = queue[1:]
		for _, act := range d.Actions {
			if !act.ExecutableAt(cur.Entails) {
				continue
			}
			next, err := cur.Apply(store, act, d.Agents)
			if err != nil {
				return err
			}
			key := next.TotalOrderKey()
			if visitedKeys[key] {
				continue
			}
			visitedKeys[key] = true
			if _, err := dumper.DumpState(next, d.Grounder); err != nil {
				return err
			}
			count++
			queue = append(queue, next)
			if count >= size {
				break
			}
		}
	}
	return nil
}

func reportResult(cmd *cobra.Command, logger zerolog.Logger, d *domain.Domain, result *search.Result, elapsed time.Duration) error {
	out := cmd.OutOrStdout()
	if result.Cancelled {
		fmt.Fprintln(out, "cancelled")
		return nil
	}
	if !result.Found {
		fmt.Fprintln(out, "no plan found")
		logger.Warn().Int("expanded", result.Expanded).Msg("no plan found")
		return nil
	}
	for _, id := range result.ExecutedActions {
		fmt.Fprintln(out, d.Grounder.ActionName(id))
	}
	logger.Info().
		Int("plan_length", int(result.PlanLength)).
		Int("expanded", result.Expanded).
		Dur("elapsed", elapsed).
		Msg("plan found")

	if resultsFile, _ := cmd.Flags().GetString("results_file"); resultsFile != "" {
		return writeResultsFile(resultsFile, result, elapsed)
	}
	return nil
}

func writeResultsFile(path string, result *search.Result, elapsed time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cli: creating results file: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "plan_length=%d\nexpanded=%d\nelapsed_ms=%d\n", result.PlanLength, result.Expanded, elapsed.Milliseconds())
	return err
}
