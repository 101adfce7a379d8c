package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newScenariosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the available scenarios.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTEPS\tDESCRIPTION")
			for _, sc := range a.scenarios {
				steps := sc.MaxSteps
				if steps == 0 {
					steps = a.cfg.Simulation.MaxSteps
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", sc.Name, steps, sc.Description)
			}
			return tw.Flush()
		},
	}
}
