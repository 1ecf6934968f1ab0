package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Akshith040/EcoScan1/internal/catalog"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

func newGuideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [type...]",
		Short: "Print the built-in recycling guides",
		Long:  "Without arguments, list the waste types that have a guide. With a type, print its steps. A type of several words may be given unquoted.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, g := range cat.Guides() {
					fmt.Fprintln(out, g.WasteType)
				}
				return nil
			}

			g := cat.Lookup(strings.Join(args, " "))
			fmt.Fprintln(out, g.WasteType)
			if g.Default {
				fmt.Fprintln(out, "(no specific guide; general steps)")
			}
			printSteps(cmd, waste.NumberSteps(g.Steps))
			return nil
		},
	}
}

func printSteps(cmd *cobra.Command, steps []waste.Step) {
	for _, s := range steps {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", s.Number, s.Text)
	}
}
