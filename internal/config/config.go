// Package config holds the run configuration of the mlem2 CLI.
package config

import (
	"fmt"
	"strings"

	"mlem2/internal/engine"
	"mlem2/internal/logging"
)

// Both induces certain and then possible rules from one preprocessing pass.
const Both = "both"

// Report formats for induced rules.
const (
	ReportText     = "text"
	ReportASCII    = "ascii"
	ReportMarkdown = "markdown"
)

// Log configures slog output.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
}

// Config is a complete run configuration. CLI flags override file values.
type Config struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"` // empty = stdout
	RuleSet string `json:"ruleset" yaml:"ruleset"`
	Workers int    `json:"workers" yaml:"workers"`
	DB      string `json:"db,omitempty" yaml:"db,omitempty"` // empty = history disabled
	Report  string `json:"report" yaml:"report"`
	Log     Log    `json:"log" yaml:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RuleSet: string(engine.Certain),
		Workers: 1,
		Report:  ReportText,
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := c.RunConfigs(); err != nil {
		return err
	}
	switch strings.ToLower(c.Report) {
	case ReportText, ReportASCII, ReportMarkdown, "md":
	default:
		return fmt.Errorf("unknown report format %q (want text, ascii or markdown)", c.Report)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// RunConfigs expands the rule set into engine runs; "both" yields certain
// then possible.
func (c *Config) RunConfigs() ([]engine.RunConfig, error) {
	if strings.EqualFold(strings.TrimSpace(c.RuleSet), Both) {
		certain, err := engine.NewRunConfig(string(engine.Certain), c.Workers)
		if err != nil {
			return nil, err
		}
		return []engine.RunConfig{certain, {RuleSet: engine.Possible, Workers: certain.Workers}}, nil
	}
	rc, err := engine.NewRunConfig(c.RuleSet, c.Workers)
	if err != nil {
		return nil, err
	}
	return []engine.RunConfig{rc}, nil
}

// OutputFor returns where the rules of rs go. With several runs and a file
// output, the rule set name is inserted before the extension
// (rules.txt → rules.certain.txt).
func (c *Config) OutputFor(rs engine.RuleSet, runs int) string {
	if c.Output == "" || runs < 2 {
		return c.Output
	}
	dot := strings.LastIndex(c.Output, ".")
	if dot <= strings.LastIndex(c.Output, "/") {
		return c.Output + "." + string(rs)
	}
	return c.Output[:dot] + "." + string(rs) + c.Output[dot:]
}
