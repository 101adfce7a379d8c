package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tatianab/dungeon-guardian/internal/guardian"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		all   bool
		steps int
	)
	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run a scenario without the interactive menu.",
		Long: `Run one scenario (the quick demo by default) and print every step.
Scenario names may be abbreviated or slightly misspelled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var queue []models.Scenario
			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all does not take a scenario name")
				}
				queue = a.scenarios
			} else {
				sc, err := a.findScenario(args)
				if err != nil {
					return err
				}
				queue = []models.Scenario{sc}
			}

			out := cmd.OutOrStdout()
			for i, sc := range queue {
				if steps > 0 {
					sc.MaxSteps = steps
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				sim, err := a.newSimulation(sc)
				if err != nil {
					return err
				}
				report, err := runScenario(cmd, sc, sim)
				if err != nil {
					return err
				}
				printSummary(out, report)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every scenario in turn")
	cmd.Flags().IntVar(&steps, "steps", 0, "override the scenario's step budget")
	return cmd
}

func runScenario(cmd *cobra.Command, sc models.Scenario, sim *guardian.Simulation) (guardian.Report, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== %s ===\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
	fmt.Fprintf(out, "Run:   %s\n", sim.ID())
	fmt.Fprintf(out, "Start: %s\n", sc.State)

	ctx := cmd.Context()
	for {
		if err := ctx.Err(); err != nil {
			return sim.Report(), err
		}
		st, ok := sim.Step(ctx)
		if !ok {
			break
		}
		printStep(out, st)
	}
	return sim.Report(), nil
}

func printStep(w io.Writer, st guardian.Step) {
	fmt.Fprintf(w, "\nStep %d - goal %s\n", st.Number, st.Goal)
	fmt.Fprintf(w, "  %s\n", st.GoalText)
	if len(st.Plan) > 0 {
		ids := make([]string, len(st.Plan))
		for i, id := range st.Plan {
			ids[i] = string(id)
		}
		fmt.Fprintf(w, "  plan: %s\n", strings.Join(ids, " -> "))
	}
	switch {
	case st.Action == "" && st.Outcome == guardian.OutcomeNoPlan:
		fmt.Fprintln(w, "  no plan found")
	case st.Action == "":
		fmt.Fprintln(w, "  goal already met, holding position")
	case st.Success:
		fmt.Fprintf(w, "  %s\n  ok: %s\n", st.ActionText, st.Message)
	default:
		fmt.Fprintf(w, "  %s\n  failed: %s\n  %s\n", st.ActionText, st.Message, st.Reflection)
	}
	fmt.Fprintf(w, "  state: %s\n", st.After)
}

func printSummary(w io.Writer, r guardian.Report) {
	fmt.Fprintf(w, "\nOutcome: %s after %d step(s)\n", r.Outcome, len(r.Steps))
	fmt.Fprintf(w, "Final: %s\n", r.Final)
	if len(r.Memory) > 0 {
		fmt.Fprintf(w, "Setbacks remembered: %d\n", len(r.Memory))
	}
}
