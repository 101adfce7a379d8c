// Command simulate_guardian runs every built-in scenario many times with
// different seeds and prints how the runs ended.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/viper"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/config"
	"github.com/tatianab/dungeon-guardian/internal/engine"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/guardian"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"github.com/tatianab/dungeon-guardian/internal/narrator"
	"github.com/tatianab/dungeon-guardian/internal/planner"
)

func main() {
	runs := flag.Int("runs", 100, "runs per scenario")
	cfgFile := flag.String("config", "", "config file")
	flag.Parse()
	if *runs < 1 {
		log.Fatalf("-runs must be at least 1, got %d", *runs)
	}

	ctx := context.Background()
	cfg, err := config.Load(viper.New(), *cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cat, err := catalog.Default(cfg.Planner.PlanningDamage)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	scenarios, err := models.BuiltinScenarios()
	if err != nil {
		log.Fatalf("Failed to load scenarios: %v", err)
	}
	pl := planner.New(cat, planner.WithMaxExpansions(cfg.Planner.MaxExpansions))

	outcomes := []guardian.Outcome{guardian.OutcomeStable, guardian.OutcomeDefeat, guardian.OutcomeNoPlan, guardian.OutcomeStepLimit}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "SCENARIO")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "\t%s", o)
	}
	fmt.Fprintln(tw, "\tAVG STEPS\tAVG FAILURES")

	for _, sc := range scenarios {
		sel, err := goals.NewSelector(sc.GoalOverrides)
		if err != nil {
			log.Fatalf("Scenario %s: %v", sc.Name, err)
		}
		counts := map[guardian.Outcome]int{}
		steps, failures := 0, 0
		for i := 1; i <= *runs; i++ {
			envCfg := cfg.EngineConfig()
			envCfg.Seed = uint64(i)
			sim := guardian.New(guardian.Deps{
				Catalog:  cat,
				Selector: sel,
				Planner:  pl,
				Env:      engine.New(envCfg),
				Narrator: narrator.NewTemplate(),
			}, sc.State, sc.MaxSteps)

			report, err := sim.Run(ctx)
			if err != nil {
				log.Fatalf("Scenario %s run %d: %v", sc.Name, i, err)
			}
			counts[report.Outcome]++
			steps += len(report.Steps)
			failures += len(report.Memory)
		}

		fmt.Fprint(tw, sc.Name)
		for _, o := range outcomes {
			fmt.Fprintf(tw, "\t%d", counts[o])
		}
		fmt.Fprintf(tw, "\t%.1f\t%.1f\n", float64(steps)/float64(*runs), float64(failures)/float64(*runs))
	}
	if err := tw.Flush(); err != nil {
		log.Fatal(err)
	}
}
