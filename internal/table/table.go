// Package table holds the parsed decision table: attribute names, their
// symbolic/numeric classification, and the universe of cases.
package table

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Missing-value markers.
const (
	Lost             = "?"
	DoNotCare        = "*"
	AttributeConcept = "-"
)

// Fatal dataset-format errors.
var (
	ErrDuplicateAttribute    = errors.New("duplicate attribute name")
	ErrUnclassifiedAttribute = errors.New("attribute matches neither symbolic nor numeric pattern")
	ErrMixedAttribute        = errors.New("numeric attribute holds a non-numeric value")
	ErrRaggedCase            = errors.New("case length does not match attribute count")
	ErrNoDecision            = errors.New("table needs at least one attribute and a decision")
)

const decimal = `-?[0-9]+(\.[0-9]+)?`

var (
	symbolicPattern = regexp.MustCompile(`^(` + decimal + `\.\.` + decimal + `|[A-Za-z][A-Za-z0-9_.+-]*)$`)
	numericPattern  = regexp.MustCompile(`^` + decimal + `$`)
)

// Kind classifies an attribute.
type Kind int

const (
	Symbolic Kind = iota + 1
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Symbolic:
		return "symbolic"
	case Numeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Attribute is a condition attribute of the table.
type Attribute struct {
	Name string
	Kind Kind
}

// Case is one row: condition values aligned to the attribute order, plus the decision.
type Case struct {
	Values   []string
	Decision string
}

// Table is an immutable decision table.
type Table struct {
	attrs      []Attribute
	decision   string
	cases      []Case
	incomplete bool
}

// IsMissing reports whether tok is one of the three missing-value markers.
func IsMissing(tok string) bool {
	return tok == Lost || tok == DoNotCare || tok == AttributeConcept
}

// New builds a table from attribute names (decision last) and rows aligned to
// them (decision value last). Attribute kinds are inferred from the values.
func New(names []string, rows [][]string) (*Table, error) {
	if len(names) < 2 {
		return nil, ErrNoDecision
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAttribute, n)
		}
		seen[n] = true
	}

	t := &Table{decision: names[len(names)-1]}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: case %d has %d values, want %d", ErrRaggedCase, i+1, len(row), len(names))
		}
		values := make([]string, len(row)-1)
		copy(values, row[:len(row)-1])
		for _, v := range values {
			if IsMissing(v) {
				t.incomplete = true
			}
		}
		t.cases = append(t.cases, Case{Values: values, Decision: row[len(row)-1]})
	}

	for a, name := range names[:len(names)-1] {
		kind, err := t.classify(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		t.attrs = append(t.attrs, Attribute{Name: name, Kind: kind})
	}
	return t, nil
}

// classify returns the kind decided by the first case whose value matches a
// pattern. A numeric attribute must not hold any other specified value.
func (t *Table) classify(a int) (Kind, error) {
	kind := Kind(0)
	for _, c := range t.cases {
		v := c.Values[a]
		if symbolicPattern.MatchString(v) {
			kind = Symbolic
			break
		}
		if numericPattern.MatchString(v) {
			kind = Numeric
			break
		}
	}
	switch kind {
	case Symbolic:
		return Symbolic, nil
	case Numeric:
		for i, c := range t.cases {
			v := c.Values[a]
			if !IsMissing(v) && !numericPattern.MatchString(v) {
				return 0, fmt.Errorf("%w: case %d value %q", ErrMixedAttribute, i+1, v)
			}
		}
		return Numeric, nil
	default:
		return 0, ErrUnclassifiedAttribute
	}
}

// Attributes returns the condition attributes in table order.
func (t *Table) Attributes() []Attribute { return t.attrs }

// Attribute returns the a-th condition attribute.
func (t *Table) Attribute(a int) Attribute { return t.attrs[a] }

// DecisionName returns the decision attribute's name.
func (t *Table) DecisionName() string { return t.decision }

// Len returns the number of cases in the universe.
func (t *Table) Len() int { return len(t.cases) }

// Case returns the row-th case.
func (t *Table) Case(row int) Case { return t.cases[row] }

// Value returns the token of attribute a in case row.
func (t *Table) Value(row, a int) string { return t.cases[row].Values[a] }

// Decision returns the decision value of case row.
func (t *Table) Decision(row int) string { return t.cases[row].Decision }

// Number parses a specified value of a numeric attribute. Values were
// validated at construction, so ok is false only for missing markers.
func (t *Table) Number(row, a int) (float64, bool) {
	v := t.cases[row].Values[a]
	if IsMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Incomplete reports whether any missing-value marker appears in the table.
func (t *Table) Incomplete() bool { return t.incomplete }

// KindCounts returns the number of symbolic and numeric attributes.
func (t *Table) KindCounts() (symbolic, numeric int) {
	for _, a := range t.attrs {
		if a.Kind == Symbolic {
			symbolic++
		} else {
			numeric++
		}
	}
	return symbolic, numeric
}
