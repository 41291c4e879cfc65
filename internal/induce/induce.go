// Package induce implements MLEM2 rule induction.
//
// For each goal (a concept approximation) the inducer greedily selects
// attribute-value pairs until the intersection of their blocks is a non-empty
// subset of the goal, then tightens repeated numeric intervals, drops
// redundant conditions, and removes the covered cases from what is left of the
// goal. Goals are independent and may be induced in parallel; each one works
// on a private fork of the block index, so tightened intervals it memoizes
// never leak into another goal. A tightened interval found while covering one
// concept is therefore not a candidate for later concepts or for the other
// rule set, and on some numeric tables the induced rules differ from an
// inducer that shares one memo across the whole run.
package induce

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"mlem2/internal/approx"
	"mlem2/internal/blocks"
	"mlem2/internal/caseset"
	"mlem2/internal/logging"
)

// Condition is one attribute-value pair of a rule.
type Condition struct {
	Attribute string
	Value     blocks.Value
}

// Decision is the right-hand side of a rule.
type Decision struct {
	Attribute string
	Value     string
}

// Rule is an induced rule. Covered is the intersection of its conditions'
// blocks.
type Rule struct {
	Conditions []Condition
	Decision   Decision
	Covered    caseset.Set
}

func (r Rule) String() string {
	parts := make([]string, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		parts = append(parts, "("+c.Attribute+", "+c.Value.String()+")")
	}
	return strings.Join(parts, " & ") + " -> (" + r.Decision.Attribute + ", " + r.Decision.Value + ")"
}

// Options tune an induction run.
type Options struct {
	// Workers bounds how many goals are induced concurrently; <= 1 is serial.
	Workers int
	Logger  *slog.Logger
}

// Inducer runs MLEM2 against a block index.
type Inducer struct {
	index  *blocks.Index
	opts   Options
	logger *slog.Logger
}

// New returns an inducer over idx. The index itself is never modified.
func New(idx *blocks.Index, opts Options) *Inducer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("induce")
	}
	return &Inducer{index: idx, opts: opts, logger: logger}
}

// Induce returns the rules for every goal, grouped in goal order.
func (in *Inducer) Induce(ctx context.Context, goals approx.Goals) ([]Rule, error) {
	workers := in.opts.Workers
	if workers < 1 {
		workers = 1
	}
	perGoal := make([][]Rule, len(goals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, goal := range goals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perGoal[i] = in.induceGoal(in.index.Fork(), goal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rules []Rule
	for _, rs := range perGoal {
		rules = append(rules, rs...)
	}
	return rules, nil
}

func (in *Inducer) induceGoal(idx *blocks.Index, goal approx.Approximation) []Rule {
	original := goal.Cases
	if original.Empty() {
		return nil
	}
	in.logger.Info("inducing rules", "decision", goal.Decision, "goal", original.Len())

	var (
		rules     []Rule
		remaining = original
		current   = original
	)
	for !remaining.Empty() {
		r := &draft{}
		for {
			best, ok := selectPair(idx, r, current)
			if !ok {
				in.logger.Warn("goal cases cannot be covered",
					"decision", goal.Decision, "cases", current.String())
				remaining = remaining.Minus(current)
				current = remaining
				break
			}
			r.add(best)
			in.logger.Debug("selected pair",
				"attribute", idx.Attribute(best.attr).Name, "value", best.value.String(),
				"block", best.block.String())

			if r.running.Empty() || !r.running.SubsetOf(original) {
				current = best.block.Intersect(current)
				continue
			}

			rule := in.accept(idx, r, original, goal.Decision)
			remaining = remaining.Minus(rule.Covered)
			current = current.Minus(rule.Covered)
			if current.Empty() {
				current = remaining
			}
			rules = append(rules, rule)
			in.logger.Debug("rule accepted", "rule", rule.String(), "remaining", remaining.Len())
			break
		}
	}
	in.logger.Info("goal covered", "decision", goal.Decision, "rules", len(rules))
	return rules
}

// accept simplifies a draft whose running block lies inside the goal and
// turns it into a rule.
func (in *Inducer) accept(idx *blocks.Index, r *draft, goal caseset.Set, decision string) Rule {
	for _, c := range r.conds {
		if len(c.values) < 2 {
			continue
		}
		v, block := c.tighten()
		block = idx.Register(c.attr, v, block)
		c.values = []blocks.Value{v}
		c.blocks = []caseset.Set{block}
	}

	conds := dropConditions(r.conds, goal)

	rule := Rule{
		Decision: Decision{Attribute: idx.Table().DecisionName(), Value: decision},
		Covered:  covered(conds, -1),
	}
	for _, c := range conds {
		rule.Conditions = append(rule.Conditions, Condition{
			Attribute: idx.Attribute(c.attr).Name,
			Value:     c.values[0],
		})
	}
	return rule
}

// dropConditions removes, in one pass over the conditions in order, every
// condition whose removal leaves a non-empty intersection inside the goal.
// Later tests see earlier drops. A single condition is never dropped.
func dropConditions(conds []*condition, goal caseset.Set) []*condition {
	out := append([]*condition(nil), conds...)
	for i := 0; i < len(out) && len(out) > 1; {
		rest := covered(out, i)
		if !rest.Empty() && rest.SubsetOf(goal) {
			out = append(out[:i], out[i+1:]...)
			continue
		}
		i++
	}
	return out
}
