// Package blocks builds the attribute-value blocks of a decision table.
//
// A block is the set of cases exhibiting a value (symbolic attributes) or
// falling inside a cutpoint interval (numeric attributes). Missing values are
// resolved in a fixed order: direct values first, then attribute-concept
// values ("-") from the specified values of the case's own concept, then
// do-not-care values ("*") broadcast to every block. Lost values ("?") join no
// block.
package blocks

import (
	"sort"

	"mlem2/internal/caseset"
	"mlem2/internal/concept"
	"mlem2/internal/table"
)

type attrBlocks struct {
	attr      table.Attribute
	order     []Value
	blocks    map[Value]caseset.Set
	cutpoints []float64
}

// Index maps every attribute's values to their blocks. Values are enumerated
// in a stable discovery order; derived intervals registered during induction
// are appended after the values built from the table.
type Index struct {
	tbl   *table.Table
	part  *concept.Partition
	attrs []*attrBlocks
}

// Build computes the blocks of every condition attribute.
func Build(t *table.Table, p *concept.Partition) *Index {
	x := &Index{tbl: t, part: p}
	for a, at := range t.Attributes() {
		var ab *attrBlocks
		if at.Kind == table.Numeric {
			ab = x.buildNumeric(a, at)
		} else {
			ab = x.buildSymbolic(a, at)
		}
		x.attrs = append(x.attrs, ab)
	}
	return x
}

type pending struct {
	order    []Value
	builders map[Value]*caseset.Builder
}

func (p *pending) add(v Value, rows ...int) {
	b, ok := p.builders[v]
	if !ok {
		b = &caseset.Builder{}
		p.builders[v] = b
		p.order = append(p.order, v)
	}
	b.Add(rows...)
}

func (p *pending) freeze(at table.Attribute, cutpoints []float64) *attrBlocks {
	ab := &attrBlocks{
		attr:      at,
		order:     p.order,
		blocks:    make(map[Value]caseset.Set, len(p.order)),
		cutpoints: cutpoints,
	}
	for _, v := range p.order {
		ab.blocks[v] = p.builders[v].Set()
	}
	return ab
}

func (x *Index) buildSymbolic(a int, at table.Attribute) *attrBlocks {
	p := &pending{builders: make(map[Value]*caseset.Builder)}
	var conceptRows, dontCare []int
	for row := 0; row < x.tbl.Len(); row++ {
		switch v := x.tbl.Value(row, a); v {
		case table.Lost:
		case table.DoNotCare:
			dontCare = append(dontCare, row)
		case table.AttributeConcept:
			conceptRows = append(conceptRows, row)
		default:
			p.add(Symbol(v), row)
		}
	}
	for _, row := range conceptRows {
		for _, v := range x.specifiedValues(a, row) {
			p.add(Symbol(v), row)
		}
	}
	for _, v := range p.order {
		p.builders[v].Add(dontCare...)
	}
	return p.freeze(at, nil)
}

func (x *Index) buildNumeric(a int, at table.Attribute) *attrBlocks {
	var distinct []float64
	seen := make(map[float64]bool)
	for row := 0; row < x.tbl.Len(); row++ {
		if f, ok := x.tbl.Number(row, a); ok && !seen[f] {
			seen[f] = true
			distinct = append(distinct, f)
		}
	}
	sort.Float64s(distinct)

	p := &pending{builders: make(map[Value]*caseset.Builder)}
	var cutpoints []float64
	switch len(distinct) {
	case 0:
		return p.freeze(at, nil)
	case 1:
		p.add(Range(distinct[0], distinct[0]))
	default:
		low, high := distinct[0], distinct[len(distinct)-1]
		for i := 0; i+1 < len(distinct); i++ {
			cp := roundCutpoint((distinct[i] + distinct[i+1]) / 2)
			cutpoints = append(cutpoints, cp)
			p.add(Range(low, cp))
			p.add(Range(cp, high))
		}
	}

	addValue := func(f float64, row int) {
		for _, v := range p.order {
			if v.Interval.Contains(f) {
				p.builders[v].Add(row)
			}
		}
	}

	var conceptRows, dontCare []int
	for row := 0; row < x.tbl.Len(); row++ {
		switch v := x.tbl.Value(row, a); v {
		case table.Lost:
		case table.DoNotCare:
			dontCare = append(dontCare, row)
		case table.AttributeConcept:
			conceptRows = append(conceptRows, row)
		default:
			f, _ := x.tbl.Number(row, a)
			addValue(f, row)
		}
	}
	for _, row := range conceptRows {
		for _, v := range x.specifiedValues(a, row) {
			f, ok := parseNumber(v)
			if ok {
				addValue(f, row)
			}
		}
	}
	for _, v := range p.order {
		p.builders[v].Add(dontCare...)
	}
	return p.freeze(at, cutpoints)
}

// specifiedValues returns the distinct specified tokens of attribute a among
// the cases of row's concept, in case order.
func (x *Index) specifiedValues(a, row int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range x.part.Of(row).Cases.Members() {
		v := x.tbl.Value(m, a)
		if table.IsMissing(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Table returns the table the index was built from.
func (x *Index) Table() *table.Table { return x.tbl }

// Len returns the number of attributes.
func (x *Index) Len() int { return len(x.attrs) }

// Attribute returns the a-th attribute.
func (x *Index) Attribute(a int) table.Attribute { return x.attrs[a].attr }

// Values returns the values of attribute a in enumeration order. The slice
// must not be modified.
func (x *Index) Values(a int) []Value { return x.attrs[a].order }

// Block returns the block of (a, v).
func (x *Index) Block(a int, v Value) (caseset.Set, bool) {
	s, ok := x.attrs[a].blocks[v]
	return s, ok
}

// Cutpoints returns the sorted cutpoints of a numeric attribute.
func (x *Index) Cutpoints(a int) []float64 { return x.attrs[a].cutpoints }

// Fork returns an index sharing all blocks with x whose later registrations
// stay private to the fork.
func (x *Index) Fork() *Index {
	f := &Index{tbl: x.tbl, part: x.part, attrs: make([]*attrBlocks, len(x.attrs))}
	for i, ab := range x.attrs {
		blocks := make(map[Value]caseset.Set, len(ab.blocks))
		for v, s := range ab.blocks {
			blocks[v] = s
		}
		f.attrs[i] = &attrBlocks{
			attr:      ab.attr,
			order:     append([]Value(nil), ab.order...),
			blocks:    blocks,
			cutpoints: ab.cutpoints,
		}
	}
	return f
}

// Register memoizes a derived value and its block. If v is already indexed the
// existing block is kept and returned.
func (x *Index) Register(a int, v Value, s caseset.Set) caseset.Set {
	ab := x.attrs[a]
	if existing, ok := ab.blocks[v]; ok {
		return existing
	}
	ab.blocks[v] = s
	ab.order = append(ab.order, v)
	return s
}

// Matching returns the cases indistinguishable from a specified token of
// attribute a: the token's block for a symbolic attribute, or the
// intersection of every interval containing the number for a numeric one.
// ok is false when no block matches.
func (x *Index) Matching(a int, token string) (caseset.Set, bool) {
	ab := x.attrs[a]
	if ab.attr.Kind == table.Symbolic {
		s, ok := ab.blocks[Symbol(token)]
		return s, ok
	}
	f, ok := parseNumber(token)
	if !ok {
		return caseset.Set{}, false
	}
	var (
		out   caseset.Set
		found bool
	)
	for _, v := range ab.order {
		if !v.Interval.Contains(f) {
			continue
		}
		if !found {
			out, found = ab.blocks[v], true
			continue
		}
		out = out.Intersect(ab.blocks[v])
	}
	return out, found
}

// ConceptUnion resolves an attribute-concept value of case row: the union of
// the matching sets of every value of attribute a specified within row's
// concept. ok is false when the concept specifies no value.
func (x *Index) ConceptUnion(a, row int) (caseset.Set, bool) {
	var (
		b     caseset.Builder
		found bool
	)
	for _, v := range x.specifiedValues(a, row) {
		if s, ok := x.Matching(a, v); ok {
			b.AddSet(s)
			found = true
		}
	}
	return b.Set(), found
}
