// Package engine wires the induction pipeline: preprocessing (concepts,
// blocks, coverage sets) runs once per table, and any number of rule sets can
// then be induced from it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mlem2/internal/approx"
	"mlem2/internal/blocks"
	"mlem2/internal/concept"
	"mlem2/internal/coverage"
	"mlem2/internal/induce"
	"mlem2/internal/logging"
	"mlem2/internal/table"
)

// ErrInvalidRuleSet is returned for a rule set other than certain or possible.
var ErrInvalidRuleSet = errors.New("rule set must be certain or possible")

// RuleSet names which approximation rules are induced from.
type RuleSet string

const (
	Certain  RuleSet = "certain"
	Possible RuleSet = "possible"
)

// Kind returns the approximation the rule set is induced from.
func (r RuleSet) Kind() approx.Kind {
	if r == Possible {
		return approx.Upper
	}
	return approx.Lower
}

// ParseRuleSet accepts certain/possible in any case, or the menu numbers 1/2.
func ParseRuleSet(s string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "certain", "1":
		return Certain, nil
	case "possible", "2":
		return Possible, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRuleSet, s)
}

// RunConfig configures one induction run.
type RunConfig struct {
	RuleSet RuleSet
	Workers int
}

// NewRunConfig validates a run configuration.
func NewRunConfig(ruleset string, workers int) (RunConfig, error) {
	rs, err := ParseRuleSet(ruleset)
	if err != nil {
		return RunConfig{}, err
	}
	if workers < 0 {
		return RunConfig{}, fmt.Errorf("workers must not be negative, got %d", workers)
	}
	return RunConfig{RuleSet: rs, Workers: workers}, nil
}

// Model is a preprocessed decision table.
type Model struct {
	Table     *table.Table
	Partition *concept.Partition
	Index     *blocks.Index
	Coverage  *coverage.Sets

	logger *slog.Logger
}

// Prepare computes concepts, attribute-value blocks and coverage sets.
func Prepare(t *table.Table) *Model {
	logger := logging.New("engine")
	p := concept.NewPartition(t)
	idx := blocks.Build(t, p)
	sets := coverage.Compute(t, idx, logging.New("coverage"))
	logger.Info("table prepared",
		"cases", t.Len(), "concepts", p.Len(), "strategy", sets.Strategy().String(),
		"empty_characteristic_sets", len(sets.EmptyCases()))
	return &Model{Table: t, Partition: p, Index: idx, Coverage: sets, logger: logger}
}

// Goals returns the approximations of every concept.
func (m *Model) Goals(kind approx.Kind) approx.Goals {
	return approx.Compute(m.Coverage, m.Partition, kind)
}

// Result is the outcome of one induction run.
type Result struct {
	RuleSet RuleSet
	Goals   approx.Goals
	Rules   []induce.Rule
}

// Induce runs MLEM2 for the configured rule set. The model is not modified,
// so it can be induced from again with another configuration.
func (m *Model) Induce(ctx context.Context, cfg RunConfig) (*Result, error) {
	goals := m.Goals(cfg.RuleSet.Kind())
	in := induce.New(m.Index, induce.Options{Workers: cfg.Workers, Logger: logging.New("induce")})
	rules, err := in.Induce(ctx, goals)
	if err != nil {
		return nil, fmt.Errorf("induce %s rules: %w", cfg.RuleSet, err)
	}
	m.logger.Info("rules induced", "ruleset", string(cfg.RuleSet), "rules", len(rules))
	return &Result{RuleSet: cfg.RuleSet, Goals: goals, Rules: rules}, nil
}
