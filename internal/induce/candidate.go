package induce

import (
	"mlem2/internal/blocks"
	"mlem2/internal/caseset"
	"mlem2/internal/table"
)

// candidate is an attribute-value pair considered for the rule being built.
type candidate struct {
	attr    int
	value   blocks.Value
	block   caseset.Set
	overlap int // |block ∩ goal|
	order   int // position in attribute-then-value enumeration
}

// beats is the total order of block selection: larger goal overlap first,
// then the smaller (more specific) block, then the earlier pair.
func (c candidate) beats(o candidate) bool {
	if c.overlap != o.overlap {
		return c.overlap > o.overlap
	}
	if n, m := c.block.Len(), o.block.Len(); n != m {
		return n < m
	}
	return c.order < o.order
}

// selectPair scans every eligible pair and returns the best one with a
// non-empty goal overlap. A symbolic attribute already in the rule is not
// eligible; a numeric one is, for intervals not yet selected whose bounds fall
// strictly inside the range the rule already implies.
func selectPair(idx *blocks.Index, r *draft, goal caseset.Set) (candidate, bool) {
	var (
		best  candidate
		found bool
		order int
	)
	for a := 0; a < idx.Len(); a++ {
		cond := r.condition(a)
		if cond != nil && idx.Attribute(a).Kind == table.Symbolic {
			order += len(idx.Values(a))
			continue
		}
		var bound blocks.Interval
		if cond != nil {
			bound = cond.bound()
		}
		for _, v := range idx.Values(a) {
			order++
			if cond != nil && (cond.has(v) || !opensInside(bound, v.Interval)) {
				continue
			}
			block, _ := idx.Block(a, v)
			c := candidate{attr: a, value: v, block: block, overlap: block.Overlap(goal), order: order}
			if c.overlap == 0 {
				continue
			}
			if !found || c.beats(best) {
				best, found = c, true
			}
		}
	}
	return best, found
}

// opensInside reports whether either end of iv lies strictly inside bound.
func opensInside(bound, iv blocks.Interval) bool {
	return (bound.Low < iv.Low && iv.Low < bound.High) ||
		(bound.Low < iv.High && iv.High < bound.High)
}
