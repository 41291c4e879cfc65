// Package coverage computes the per-case sets that approximations are built
// from: exact equivalence classes (A*) for complete tables, characteristic
// sets for tables with missing values.
package coverage

import (
	"log/slog"

	"mlem2/internal/blocks"
	"mlem2/internal/caseset"
	"mlem2/internal/table"
)

// Strategy selects how coverage sets are computed.
type Strategy int

const (
	EquivalenceClasses Strategy = iota + 1
	Characteristic
)

func (s Strategy) String() string {
	switch s {
	case EquivalenceClasses:
		return "A*"
	case Characteristic:
		return "characteristic sets"
	default:
		return "unknown"
	}
}

// Sets holds the coverage sets of one table.
type Sets struct {
	strategy Strategy
	classes  []caseset.Set
	byCase   []caseset.Set
	empty    []int
}

// Compute picks the strategy from the table's incompleteness switch and
// computes the sets. Empty characteristic sets are logged on logger and
// recorded; those cases contribute no coverage set. With the block index
// built by blocks.Build every case lies in each block it is intersected
// with, so the empty branch only guards indexes built some other way.
func Compute(t *table.Table, idx *blocks.Index, logger *slog.Logger) *Sets {
	if !t.Incomplete() {
		return equivalenceClasses(t)
	}
	return characteristicSets(t, idx, logger)
}

func equivalenceClasses(t *table.Table) *Sets {
	var (
		reps     []int
		builders []*caseset.Builder
	)
	classOf := make([]int, t.Len())
	for row := 0; row < t.Len(); row++ {
		found := -1
		for i, rep := range reps {
			if sameValues(t, row, rep) {
				found = i
				break
			}
		}
		if found < 0 {
			found = len(reps)
			reps = append(reps, row)
			builders = append(builders, &caseset.Builder{})
		}
		builders[found].Add(row)
		classOf[row] = found
	}

	s := &Sets{strategy: EquivalenceClasses, byCase: make([]caseset.Set, t.Len())}
	for _, b := range builders {
		s.classes = append(s.classes, b.Set())
	}
	for row, c := range classOf {
		s.byCase[row] = s.classes[c]
	}
	return s
}

func sameValues(t *table.Table, a, b int) bool {
	va, vb := t.Case(a).Values, t.Case(b).Values
	for i := range va {
		if va[i] != vb[i] {
			return false
		}
	}
	return true
}

func characteristicSets(t *table.Table, idx *blocks.Index, logger *slog.Logger) *Sets {
	s := &Sets{strategy: Characteristic, byCase: make([]caseset.Set, t.Len())}
	universe := caseset.Universe(t.Len())
	for row := 0; row < t.Len(); row++ {
		k := universe
		for a := range t.Attributes() {
			var (
				part caseset.Set
				ok   bool
			)
			switch v := t.Value(row, a); v {
			case table.Lost, table.DoNotCare:
				continue
			case table.AttributeConcept:
				part, ok = idx.ConceptUnion(a, row)
			default:
				part, ok = idx.Matching(a, v)
			}
			if !ok {
				continue
			}
			k = k.Intersect(part)
		}
		if k.Empty() {
			logger.Warn("characteristic set is empty", "case", row+1)
			s.empty = append(s.empty, row)
			continue
		}
		s.byCase[row] = k
	}
	return s
}

// Strategy returns the strategy the sets were computed with.
func (s *Sets) Strategy() Strategy { return s.strategy }

// Of returns the coverage set of case row: its equivalence class or its
// characteristic set. ok is false for a case with an empty characteristic set.
func (s *Sets) Of(row int) (caseset.Set, bool) {
	k := s.byCase[row]
	return k, !k.Empty()
}

// Classes returns the equivalence classes; nil for characteristic sets.
func (s *Sets) Classes() []caseset.Set { return s.classes }

// EmptyCases returns the cases whose characteristic set came out empty.
func (s *Sets) EmptyCases() []int { return s.empty }

// Consulted returns the coverage sets an approximation of the concept is built
// from. Equivalence classes are global; characteristic sets are taken only for
// the cases inside the concept.
func (s *Sets) Consulted(concept caseset.Set) []caseset.Set {
	if s.strategy == EquivalenceClasses {
		return s.classes
	}
	var out []caseset.Set
	for _, row := range concept.Members() {
		if k, ok := s.Of(row); ok {
			out = append(out, k)
		}
	}
	return out
}
