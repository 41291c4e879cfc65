package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mlem2/internal/approx"
	"mlem2/internal/engine"
	"mlem2/internal/format"
	"mlem2/internal/lers"
)

var inspectFlags struct {
	input  string
	format string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show attribute types, blocks, concepts and approximations of a table",
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVarP(&inspectFlags.input, "input", "i", "", "LERS input file")
	f.StringVar(&inspectFlags.format, "format", "ascii", "Table format: ascii or markdown")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	input := inspectFlags.input
	if input == "" {
		input = runConfig.Input
	}
	if input == "" {
		return fmt.Errorf("no input table (use -i or set input in the config file)")
	}
	mode, err := format.ParseMode(inspectFlags.format)
	if err != nil {
		return err
	}
	t, err := lers.ParseFile(input)
	if err != nil {
		return err
	}
	m := engine.Prepare(t)

	out := cmd.OutOrStdout()
	symbolic, numeric := t.KindCounts()
	fmt.Fprintf(out, "Cases:      %d\n", t.Len())
	fmt.Fprintf(out, "Attributes: %d (%d symbolic, %d numeric)\n", symbolic+numeric, symbolic, numeric)
	fmt.Fprintf(out, "Decision:   %s\n", t.DecisionName())
	fmt.Fprintf(out, "Complete:   %s\n", format.BoolMark(!t.Incomplete()))
	fmt.Fprintf(out, "Coverage:   %s\n", m.Coverage.Strategy())
	if empty := m.Coverage.EmptyCases(); len(empty) > 0 {
		fmt.Fprintf(out, "Empty characteristic sets: %d\n", len(empty))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.BlocksTable(mode, m.Index))
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.ConceptsTable(mode, t.DecisionName(), m.Partition))
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.ApproxTable(mode, m.Goals(approx.Lower), m.Goals(approx.Upper)))
	return nil
}
