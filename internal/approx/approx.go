// Package approx computes lower (certain) and upper (possible) approximations
// of every concept. The approximations are the goals rule induction covers.
package approx

import (
	"mlem2/internal/caseset"
	"mlem2/internal/concept"
	"mlem2/internal/coverage"
)

// Kind selects lower or upper approximation.
type Kind int

const (
	Lower Kind = iota + 1
	Upper
)

func (k Kind) String() string {
	switch k {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	default:
		return "unknown"
	}
}

// Approximation is the approximation of one concept.
type Approximation struct {
	Decision string
	Cases    caseset.Set
}

// Goals are approximations in concept order.
type Goals []Approximation

// Get returns the approximation for a decision value.
func (g Goals) Get(decision string) (caseset.Set, bool) {
	for _, a := range g {
		if a.Decision == decision {
			return a.Cases, true
		}
	}
	return caseset.Set{}, false
}

// Compute returns the kind approximation of every concept of p. A coverage
// set joins a lower approximation when it lies inside the concept and an
// upper approximation when it meets the concept at all.
func Compute(sets *coverage.Sets, p *concept.Partition, kind Kind) Goals {
	goals := make(Goals, 0, p.Len())
	for _, c := range p.Concepts() {
		var b caseset.Builder
		for _, k := range sets.Consulted(c.Cases) {
			switch kind {
			case Lower:
				if k.SubsetOf(c.Cases) {
					b.AddSet(k)
				}
			case Upper:
				if !k.Disjoint(c.Cases) {
					b.AddSet(k)
				}
			}
		}
		goals = append(goals, Approximation{Decision: c.Decision, Cases: b.Set()})
	}
	return goals
}
