// Package concept partitions the universe of a decision table by decision value.
package concept

import (
	"mlem2/internal/caseset"
	"mlem2/internal/table"
)

// Concept is the set of cases sharing one decision value.
type Concept struct {
	Decision string
	Cases    caseset.Set
}

// Partition holds the concepts of a table in first-seen decision order.
type Partition struct {
	concepts []Concept
	byCase   []int
	byName   map[string]int
}

// NewPartition groups case indices by decision value in a single pass.
func NewPartition(t *table.Table) *Partition {
	p := &Partition{
		byCase: make([]int, t.Len()),
		byName: make(map[string]int),
	}
	var builders []*caseset.Builder
	for row := 0; row < t.Len(); row++ {
		d := t.Decision(row)
		i, ok := p.byName[d]
		if !ok {
			i = len(builders)
			p.byName[d] = i
			builders = append(builders, &caseset.Builder{})
			p.concepts = append(p.concepts, Concept{Decision: d})
		}
		builders[i].Add(row)
		p.byCase[row] = i
	}
	for i, b := range builders {
		p.concepts[i].Cases = b.Set()
	}
	return p
}

// Concepts returns the concepts in first-seen order.
func (p *Partition) Concepts() []Concept { return p.concepts }

// Of returns the concept containing case row.
func (p *Partition) Of(row int) Concept { return p.concepts[p.byCase[row]] }

// Lookup returns the concept for a decision value.
func (p *Partition) Lookup(decision string) (Concept, bool) {
	i, ok := p.byName[decision]
	if !ok {
		return Concept{}, false
	}
	return p.concepts[i], true
}

// Len returns the number of concepts.
func (p *Partition) Len() int { return len(p.concepts) }
