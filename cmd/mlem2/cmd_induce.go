package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mlem2/internal/config"
	"mlem2/internal/engine"
	"mlem2/internal/format"
	"mlem2/internal/lers"
	"mlem2/internal/logging"
	"mlem2/internal/store"
)

var induceFlags struct {
	input   string
	output  string
	ruleset string
	workers int
	db      string
	report  string
}

var induceCmd = &cobra.Command{
	Use:   "induce",
	Short: "Induce certain and/or possible rules from a LERS table",
	Long: `Induces MLEM2 rules from the lower (certain) or upper (possible) approximations
of every concept. With --ruleset both, the table is preprocessed once and both rule
sets are induced; a file output then gets the rule set name inserted before its
extension (rules.txt becomes rules.certain.txt and rules.possible.txt).`,
	RunE: runInduce,
}

func init() {
	f := induceCmd.Flags()
	f.StringVarP(&induceFlags.input, "input", "i", "", "LERS input file")
	f.StringVarP(&induceFlags.output, "output", "o", "", "Rule output file (default stdout)")
	f.StringVar(&induceFlags.ruleset, "ruleset", "", "certain, possible or both (default certain)")
	f.IntVar(&induceFlags.workers, "workers", 0, "Concepts induced in parallel (default 1)")
	f.StringVar(&induceFlags.db, "db", "", "Record the run in this history DB (e.g. "+store.DefaultDBPath+")")
	f.StringVar(&induceFlags.report, "report", "", "Report on stdout: text, ascii or markdown (default text)")
}

// applyInduceFlags overrides file configuration with the flags that were set.
func applyInduceFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		c.Input = induceFlags.input
	}
	if f.Changed("output") {
		c.Output = induceFlags.output
	}
	if f.Changed("ruleset") {
		c.RuleSet = induceFlags.ruleset
	}
	if f.Changed("workers") {
		c.Workers = induceFlags.workers
	}
	if f.Changed("db") {
		c.DB = induceFlags.db
	}
	if f.Changed("report") {
		c.Report = induceFlags.report
	}
}

func runInduce(cmd *cobra.Command, _ []string) error {
	c := *runConfig
	applyInduceFlags(cmd, &c)
	if c.Input == "" {
		return fmt.Errorf("no input table (use -i or set input in the config file)")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	runs, err := c.RunConfigs()
	if err != nil {
		return err
	}

	t, err := lers.ParseFile(c.Input)
	if err != nil {
		return err
	}
	m := engine.Prepare(t)

	var st store.Store
	if c.DB != "" {
		sq, err := store.Open(c.DB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer sq.Close()
		st = sq
	}

	logger := logging.New("cli")
	out := cmd.OutOrStdout()
	for _, rc := range runs {
		start := time.Now()
		res, err := m.Induce(cmd.Context(), rc)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		path := c.OutputFor(rc.RuleSet, len(runs))
		if err := emitRules(out, path, &c, res); err != nil {
			return err
		}
		if st != nil {
			run := store.NewRun(c.Input, string(rc.RuleSet), t.Len(), t.Incomplete(), res.Rules, elapsed)
			id, err := st.SaveRun(run)
			if err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			logger.Info("run recorded", "id", id, "db", c.DB)
		}
	}
	return nil
}

// emitRules writes the rule text to path (or out when path is empty) and,
// for table reports, prints the rules table to out.
func emitRules(out io.Writer, path string, c *config.Config, res *engine.Result) error {
	title := titleCase(string(res.RuleSet)) + " rules"
	report := strings.ToLower(c.Report)

	if path != "" {
		if err := writeRulesFile(path, res); err != nil {
			return err
		}
		if report == config.ReportText {
			fmt.Fprintf(out, "%s: %d written to %s\n", title, len(res.Rules), path)
		}
	} else if report == config.ReportText {
		if len(res.Rules) == 0 {
			logging.New("cli").Warn("no rules were produced", "ruleset", string(res.RuleSet))
		}
		if err := format.WriteRules(out, res.Rules); err != nil {
			return err
		}
	}

	if report != config.ReportText {
		mode, err := format.ParseMode(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, format.RulesTable(mode, title, res.Rules))
	}
	return nil
}

func writeRulesFile(path string, res *engine.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rules file: %w", err)
	}
	if err := format.WriteRules(f, res.Rules); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
