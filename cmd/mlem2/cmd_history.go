package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mlem2/internal/format"
	"mlem2/internal/store"
)

var historyFlags struct {
	db     string
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded induction runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the rules of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	pf := historyCmd.PersistentFlags()
	pf.StringVar(&historyFlags.db, "db", "", "History DB path (default "+store.DefaultDBPath+")")
	pf.StringVar(&historyFlags.format, "format", "ascii", "Table format: ascii or markdown")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func openHistory() (*store.SqlStore, error) {
	path := historyFlags.db
	if path == "" {
		path = runConfig.DB
	}
	if path == "" {
		path = store.DefaultDBPath
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return st, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	mode, err := format.ParseMode(historyFlags.format)
	if err != nil {
		return err
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	tb := format.NewTable(mode)
	tb.Header("ID", "Dataset", "Rule set", "Cases", "Elapsed", "Created")
	for _, r := range runs {
		tb.Row(r.ID, format.Truncate(r.Dataset, 40), r.RuleSet, r.Cases, format.FmtDuration(r.Elapsed), r.CreatedAt)
	}
	tb.Columns(
		format.ColumnConfig{Number: 1, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	fmt.Fprintln(out, tb.String())
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run id must be a number: %w", err)
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %d not found", id)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run #%d: %s rules for %s (%d cases, %s)\n",
		run.ID, run.RuleSet, run.Dataset, run.Cases, run.CreatedAt)
	for _, r := range run.Rules {
		fmt.Fprintln(out, r.Text)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run id must be a number: %w", err)
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.DeleteRun(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run #%d\n", id)
	return nil
}
