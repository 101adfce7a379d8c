package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/config"
	"github.com/tatianab/dungeon-guardian/internal/engine"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/guardian"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"github.com/tatianab/dungeon-guardian/internal/narrator"
	"github.com/tatianab/dungeon-guardian/internal/observability"
	"github.com/tatianab/dungeon-guardian/internal/planner"
	"github.com/tatianab/dungeon-guardian/internal/tui"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand needs once flags and config are loaded.
type app struct {
	v         *viper.Viper
	cfgFile   string
	quiet     bool // keep logs off the terminal (TUI)
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *catalog.Catalog
	scenarios []models.Scenario
	narrator  guardian.Narrator
	closer    io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "guardian",
		Short:         "Simulate a dungeon guardian that plans its way out of trouble.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.quiet = cmd == cmd.Root() || cmd.Name() == "tui"
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./guardian.yaml)")
	flags.Int64("seed", 0, "random seed for the environment (0 picks one)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("narrator", config.NarratorTemplate, "narrator to use (template or gemini)")
	flags.String("scenarios", "", "YAML file with extra scenarios")
	_ = a.v.BindPFlag("simulation.seed", flags.Lookup("seed"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("narrator.provider", flags.Lookup("narrator"))
	_ = a.v.BindPFlag("simulation.scenario_file", flags.Lookup("scenarios"))

	root.AddCommand(newRunCmd(a), newPlanCmd(a), newScenariosCmd(a), newTUICmd(a))
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.quiet {
		a.logger = observability.NewLogger(cfg.Logger, zapcore.AddSync(io.Discard))
	} else {
		a.logger = observability.NewStderrLogger(cfg.Logger)
	}

	a.catalog, err = catalog.Default(cfg.Planner.PlanningDamage)
	if err != nil {
		return err
	}

	a.scenarios, err = models.BuiltinScenarios()
	if err != nil {
		return fmt.Errorf("built-in scenarios: %w", err)
	}
	if path := cfg.Simulation.ScenarioFile; path != "" {
		extra, err := models.LoadScenarios(path)
		if err != nil {
			return fmt.Errorf("loading scenarios: %w", err)
		}
		a.scenarios = mergeScenarios(a.scenarios, extra)
	}

	switch cfg.Narrator.Provider {
	case config.NarratorGemini:
		g, err := narrator.NewGemini(ctx, cfg.Narrator.APIKey, cfg.Narrator.Model, a.logger.Named("narrator"))
		if err != nil {
			return err
		}
		a.narrator, a.closer = g, g
	default:
		a.narrator = narrator.NewTemplate()
	}

	a.logger.Debug("Configuration loaded",
		zap.Int("scenarios", len(a.scenarios)),
		zap.String("narrator", cfg.Narrator.Provider))
	return nil
}

func (a *app) teardown() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// mergeScenarios appends extra, replacing built-ins of the same name.
func mergeScenarios(base, extra []models.Scenario) []models.Scenario {
	out := append([]models.Scenario(nil), base...)
	for _, sc := range extra {
		replaced := false
		for i := range out {
			if out[i].Name == sc.Name {
				out[i], replaced = sc, true
				break
			}
		}
		if !replaced {
			out = append(out, sc)
		}
	}
	return out
}

func (a *app) planner() *planner.Planner {
	return planner.New(a.catalog,
		planner.WithMaxExpansions(a.cfg.Planner.MaxExpansions),
		planner.WithLogger(a.logger.Named("planner")))
}

// newSimulation is the guardian.Factory used by every command.
func (a *app) newSimulation(sc models.Scenario) (*guardian.Simulation, error) {
	sel, err := goals.NewSelector(sc.GoalOverrides)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	steps := sc.MaxSteps
	if steps == 0 {
		steps = a.cfg.Simulation.MaxSteps
	}
	logger := a.logger.Named("guardian").With(zap.String("scenario", sc.Name))
	env := engine.New(a.cfg.EngineConfig(), engine.WithLogger(logger.Named("engine")))
	logger.Debug("Environment ready", zap.Uint64("seed", env.Seed()))

	return guardian.New(guardian.Deps{
		Catalog:  a.catalog,
		Selector: sel,
		Planner:  a.planner(),
		Env:      env,
		Narrator: a.narrator,
		Logger:   logger,
	}, sc.State, steps), nil
}

func (a *app) findScenario(args []string) (models.Scenario, error) {
	name := models.QuickDemo
	if len(args) > 0 {
		name = args[0]
	}
	return models.FindScenario(name, a.scenarios)
}

func runTUI(a *app) error {
	return tui.Run(a.newSimulation, a.scenarios)
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive menu (the default).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a)
		},
	}
}
