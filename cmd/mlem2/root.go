// mlem2 induces certain and possible decision rules from LERS data files.
//
// Usage:
//
//	mlem2 induce -i <table.d> [-o rules.txt] [--ruleset certain|possible|both] [--db history.db]
//	mlem2 inspect -i <table.d> [--format ascii|markdown]
//	mlem2 history [list|show <id>|delete <id>] [--db history.db]
//	mlem2 serve [--db history.db]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mlem2/internal/config"
	"mlem2/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	logLevel  string
	logFormat string
}

// runConfig is the file configuration (or defaults) after flag overrides of
// the log settings; subcommands apply their own overrides on top.
var runConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "mlem2",
	Short: "Rule induction from incomplete decision tables (MLEM2)",
	Long: "mlem2 induces certain and possible rules from decision tables in LERS format,\n" +
		"including tables with lost (?), do-not-care (*) and attribute-concept (-) values.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.config, "config", "c", "", "Run configuration file (YAML or JSON)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (default text)")

	rootCmd.AddCommand(induceCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	c := config.Default()
	if rootFlags.config != "" {
		loaded, err := config.LoadFromPath(rootFlags.config)
		if err != nil {
			return err
		}
		c = loaded
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Log.Format = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, c.Log.Format, cmd.ErrOrStderr())
	runConfig = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
