package format

import (
	"bufio"
	"fmt"
	"io"

	"mlem2/internal/approx"
	"mlem2/internal/blocks"
	"mlem2/internal/concept"
	"mlem2/internal/induce"
)

// WriteRules writes one rule per line as "(a, v) & (b, w) -> (d, x)".
func WriteRules(w io.Writer, rules []induce.Rule) error {
	bw := bufio.NewWriter(w)
	for _, r := range rules {
		if _, err := fmt.Fprintln(bw, r.String()); err != nil {
			return fmt.Errorf("write rule: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// RulesTable lists rules with the cases each one covers.
func RulesTable(m Mode, title string, rules []induce.Rule) string {
	tb := NewTable(m)
	tb.Title(title)
	tb.Header("#", "Rule", "Covers", "Cases")
	total := 0
	for i, r := range rules {
		tb.Row(i+1, r.String(), r.Covered.Len(), Truncate(CaseList(r.Covered), 60))
		total += r.Covered.Len()
	}
	tb.Footer("", fmt.Sprintf("%d rules", len(rules)), total, "")
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 3, Align: AlignRight},
	)
	return tb.String()
}

// BlocksTable lists every attribute-value block of the index in discovery
// order.
func BlocksTable(m Mode, idx *blocks.Index) string {
	tb := NewTable(m)
	tb.Title("Attribute-value blocks")
	tb.Header("Attribute", "Type", "Value", "Block")
	for a := 0; a < idx.Len(); a++ {
		at := idx.Attribute(a)
		for _, v := range idx.Values(a) {
			b, _ := idx.Block(a, v)
			tb.Row(at.Name, at.Kind.String(), v.String(), CaseList(b))
		}
	}
	return tb.String()
}

// ConceptsTable lists the concepts of a partition.
func ConceptsTable(m Mode, decision string, p *concept.Partition) string {
	tb := NewTable(m)
	tb.Title("Concepts")
	tb.Header(decision, "Size", "Cases")
	for _, c := range p.Concepts() {
		tb.Row(c.Decision, c.Cases.Len(), CaseList(c.Cases))
	}
	tb.Columns(ColumnConfig{Number: 2, Align: AlignRight})
	return tb.String()
}

// ApproxTable shows lower and upper approximations side by side. A concept
// is definable when both coincide.
func ApproxTable(m Mode, lower, upper approx.Goals) string {
	tb := NewTable(m)
	tb.Title("Approximations")
	tb.Header("Concept", "Lower", "Upper", "Definable")
	for i, lo := range lower {
		up := upper[i]
		tb.Row(lo.Decision, CaseList(lo.Cases), CaseList(up.Cases), BoolMark(lo.Cases.Equal(up.Cases)))
	}
	tb.Columns(ColumnConfig{Number: 4, Align: AlignCenter})
	return tb.String()
}
