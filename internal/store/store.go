// Package store keeps a history of induced rule sets.
package store

import (
	"time"

	"mlem2/internal/induce"
)

// DefaultDBPath is the default relative path for the SQLite history DB.
// Open creates the parent directory.
const DefaultDBPath = ".mlem2/history.db"

// Rule is a persisted rule: its text form and the cases it covers (0-based).
type Rule struct {
	Text    string
	Covered []int
}

// Run is one induced rule set.
type Run struct {
	ID         int64
	Dataset    string // input path, or a label for in-memory input
	RuleSet    string // certain or possible
	Cases      int
	Incomplete bool
	Elapsed    time.Duration
	CreatedAt  string // RFC 3339, UTC
	Rules      []Rule
}

// NewRun captures the rules of an induction run.
func NewRun(dataset, ruleset string, cases int, incomplete bool, rules []induce.Rule, elapsed time.Duration) *Run {
	r := &Run{
		Dataset:    dataset,
		RuleSet:    ruleset,
		Cases:      cases,
		Incomplete: incomplete,
		Elapsed:    elapsed,
		Rules:      make([]Rule, 0, len(rules)),
	}
	for _, ir := range rules {
		r.Rules = append(r.Rules, Rule{Text: ir.String(), Covered: ir.Covered.Members()})
	}
	return r
}

// Store is the persistence facade for run history. The CLI and the tool
// server use only this interface; the implementation is SQLite or in-memory.
type Store interface {
	// SaveRun stores run and returns its id. ID and CreatedAt are assigned
	// when zero.
	SaveRun(run *Run) (int64, error)
	// GetRun returns the run with its rules, or nil if it does not exist.
	GetRun(id int64) (*Run, error)
	// ListRuns returns runs newest first, without rules.
	ListRuns() ([]*Run, error)
	DeleteRun(id int64) error
	Close() error
}

func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
