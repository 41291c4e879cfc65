// Package caseset provides immutable sets of case indices.
//
// Every block, concept, coverage set and approximation in the engine is a Set.
// Operations never modify their receiver; they return a new Set. Use Builder
// when a set is accumulated one index at a time.
package caseset

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Set is an immutable set of non-negative case indices. The zero value is empty.
type Set struct {
	bits *bitset.BitSet
}

// New returns a set holding the given indices.
func New(members ...int) Set {
	b := bitset.New(0)
	for _, m := range members {
		b.Set(uint(m))
	}
	return Set{bits: b}
}

// Universe returns {0, 1, ..., n-1}.
func Universe(n int) Set {
	b := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		b.Set(uint(i))
	}
	return Set{bits: b}
}

func (s Set) raw() *bitset.BitSet {
	if s.bits == nil {
		return bitset.New(0)
	}
	return s.bits
}

// Len returns the number of members.
func (s Set) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return s.bits == nil || s.bits.None() }

// Has reports whether i is a member.
func (s Set) Has(i int) bool {
	return i >= 0 && s.bits != nil && s.bits.Test(uint(i))
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	return Set{bits: s.raw().Intersection(o.raw())}
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	return Set{bits: s.raw().Union(o.raw())}
}

// Minus returns s \ o.
func (s Set) Minus(o Set) Set {
	return Set{bits: s.raw().Difference(o.raw())}
}

// Overlap returns |s ∩ o| without materializing the intersection.
func (s Set) Overlap(o Set) int {
	if s.bits == nil || o.bits == nil {
		return 0
	}
	return int(s.bits.IntersectionCardinality(o.bits))
}

// SubsetOf reports whether every member of s is in o. The empty set is a
// subset of everything.
func (s Set) SubsetOf(o Set) bool {
	if s.Empty() {
		return true
	}
	return o.raw().IsSuperSet(s.bits)
}

// Disjoint reports whether s and o share no member.
func (s Set) Disjoint(o Set) bool { return s.Overlap(o) == 0 }

// Equal reports whether s and o hold the same members, regardless of capacity.
func (s Set) Equal(o Set) bool { return s.SubsetOf(o) && o.SubsetOf(s) }

// Members returns the indices in ascending order.
func (s Set) Members() []int {
	if s.bits == nil {
		return nil
	}
	out := make([]int, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// String renders the set as "{0, 2, 5}".
func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range s.Members() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(m))
	}
	sb.WriteByte('}')
	return sb.String()
}

// Builder accumulates indices and produces a Set snapshot.
type Builder struct {
	bits *bitset.BitSet
}

// Add inserts the given indices.
func (b *Builder) Add(members ...int) {
	if b.bits == nil {
		b.bits = bitset.New(0)
	}
	for _, m := range members {
		b.bits.Set(uint(m))
	}
}

// AddSet inserts every member of s.
func (b *Builder) AddSet(s Set) {
	if s.bits == nil {
		return
	}
	if b.bits == nil {
		b.bits = bitset.New(0)
	}
	b.bits.InPlaceUnion(s.bits)
}

// Len returns the number of indices added so far.
func (b *Builder) Len() int {
	if b.bits == nil {
		return 0
	}
	return int(b.bits.Count())
}

// Set returns an immutable copy of the accumulated indices.
func (b *Builder) Set() Set {
	if b.bits == nil {
		return Set{}
	}
	return Set{bits: b.bits.Clone()}
}
