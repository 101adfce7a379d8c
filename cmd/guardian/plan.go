package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/dungeon-guardian/internal/goals"
)

func newPlanCmd(a *app) *cobra.Command {
	var goalName string
	cmd := &cobra.Command{
		Use:   "plan [scenario]",
		Short: "Show the plan the guardian would make from a scenario's start.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.findScenario(args)
			if err != nil {
				return err
			}
			sel, err := goals.NewSelector(sc.GoalOverrides)
			if err != nil {
				return err
			}

			goal := sel.Select(sc.State)
			if goalName != "" {
				if goal, err = goals.ParseGoal(goalName); err != nil {
					return err
				}
			}
			predicate := sel.Predicate(goal)
			res := a.planner().Search(sc.State, predicate)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scenario: %s\n", sc.Name)
			fmt.Fprintf(out, "State:    %s\n", sc.State)
			fmt.Fprintf(out, "Goal:     %s (%s)\n", goal, predicate)
			switch {
			case res.Found && len(res.Actions) == 0:
				fmt.Fprintln(out, "Plan:     goal already satisfied")
			case res.Found:
				fmt.Fprintln(out, "Plan:")
				for i, id := range res.Actions {
					fmt.Fprintf(out, "  %d. %s\n", i+1, id)
				}
				for _, id := range res.Actions {
					act, _ := a.catalog.Action(id)
					for _, e := range act.Effects {
						if e.Random() {
							fmt.Fprintf(out, "  note: %s changes %s at random; the plan assumes an estimate\n", id, e.Field())
						}
					}
				}
			case res.Exhausted:
				fmt.Fprintf(out, "Plan:     none within %d expansions\n", a.cfg.Planner.MaxExpansions)
			default:
				fmt.Fprintln(out, "Plan:     none, the goal is unreachable")
			}
			fmt.Fprintf(out, "Cost: %d  Expanded: %d\n", res.Cost, res.Expanded)
			return nil
		},
	}
	cmd.Flags().StringVarP(&goalName, "goal", "g", "", "plan for this goal instead of the selected one")
	return cmd
}
