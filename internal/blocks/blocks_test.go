package blocks

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mlem2/internal/caseset"
	"mlem2/internal/concept"
	"mlem2/internal/table"
)

func build(t *testing.T, names []string, rows [][]string) *Index {
	t.Helper()
	tb, err := table.New(names, rows)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return Build(tb, concept.NewPartition(tb))
}

func blockMap(x *Index, a int) map[string]string {
	out := make(map[string]string)
	for _, v := range x.Values(a) {
		s, _ := x.Block(a, v)
		out[v.String()] = s.String()
	}
	return out
}

func TestBuild_Cutpoints(t *testing.T) {
	x := build(t, []string{"a", "d"}, [][]string{
		{"1", "d1"}, {"2", "d1"}, {"3", "d2"}, {"9", "d2"},
	})
	if diff := cmp.Diff([]float64{1.5, 2.5, 6}, x.Cutpoints(0)); diff != "" {
		t.Errorf("cutpoints (-want +got):\n%s", diff)
	}
	var order []string
	for _, v := range x.Values(0) {
		order = append(order, v.String())
	}
	wantOrder := []string{"1..1.5", "1.5..9", "1..2.5", "2.5..9", "1..6", "6..9"}
	if diff := cmp.Diff(wantOrder, order); diff != "" {
		t.Errorf("value order (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"1..1.5": "{0}", "1.5..9": "{1, 2, 3}",
		"1..2.5": "{0, 1}", "2.5..9": "{2, 3}",
		"1..6": "{0, 1, 2}", "6..9": "{3}",
	}
	if diff := cmp.Diff(want, blockMap(x, 0)); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestBuild_CutpointRounding(t *testing.T) {
	x := build(t, []string{"a", "d"}, [][]string{{"0.1", "x"}, {"0.2000001", "y"}})
	if diff := cmp.Diff([]float64{0.15}, x.Cutpoints(0)); diff != "" {
		t.Errorf("cutpoints (-want +got):\n%s", diff)
	}
}

func TestBuild_SingleNumericValue(t *testing.T) {
	x := build(t, []string{"a", "d"}, [][]string{{"4", "x"}, {"4", "y"}, {"?", "y"}})
	want := map[string]string{"4..4": "{0, 1}"}
	if diff := cmp.Diff(want, blockMap(x, 0)); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestBuild_SymbolicCoverage(t *testing.T) {
	x := build(t, []string{"color", "d"}, [][]string{
		{"red", "a"}, {"blue", "a"}, {"red", "b"},
	})
	want := map[string]string{"red": "{0, 2}", "blue": "{1}"}
	if diff := cmp.Diff(want, blockMap(x, 0)); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
	// each specified case sits in exactly one symbolic block
	for row := 0; row < 3; row++ {
		n := 0
		for _, v := range x.Values(0) {
			if s, _ := x.Block(0, v); s.Has(row) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("case %d in %d blocks, want 1", row, n)
		}
	}
}

func TestBuild_MissingValues(t *testing.T) {
	x := build(t, []string{"t", "h", "d"}, [][]string{
		{"high", "1", "yes"},  // 0
		{"?", "2", "yes"},     // 1 lost
		{"*", "3", "no"},      // 2 do-not-care
		{"-", "-", "yes"},     // 3 attribute-concept: yes specifies high / 1, 2
		{"low", "3", "no"},    // 4
		{"normal", "*", "no"}, // 5
	})

	want := map[string]string{
		"high":   "{0, 2, 3}",
		"low":    "{2, 4}",
		"normal": "{2, 5}",
	}
	if diff := cmp.Diff(want, blockMap(x, 0)); diff != "" {
		t.Errorf("symbolic blocks (-want +got):\n%s", diff)
	}
	for _, v := range x.Values(0) {
		s, _ := x.Block(0, v)
		if s.Has(1) {
			t.Errorf("lost case 1 found in block %v", v)
		}
		if !s.Has(2) {
			t.Errorf("do-not-care case 2 missing from block %v", v)
		}
	}

	// numeric h: values 1,2,3 -> cutpoints 1.5, 2.5; case 3 resolves to {1, 2}
	wantNum := map[string]string{
		"1..1.5": "{0, 3, 5}",
		"1.5..3": "{1, 2, 3, 4, 5}",
		"1..2.5": "{0, 1, 3, 5}",
		"2.5..3": "{2, 4, 5}",
	}
	if diff := cmp.Diff(wantNum, blockMap(x, 1)); diff != "" {
		t.Errorf("numeric blocks (-want +got):\n%s", diff)
	}
}

func TestMatchingAndConceptUnion(t *testing.T) {
	x := build(t, []string{"h", "d"}, [][]string{
		{"1", "yes"}, {"2", "yes"}, {"3", "no"}, {"-", "yes"},
	})
	got, ok := x.Matching(0, "2")
	if !ok || !got.Equal(caseset.New(1, 3)) {
		t.Errorf("Matching(2) = %v, %v", got, ok)
	}
	got, ok = x.ConceptUnion(0, 3)
	if !ok || !got.Equal(caseset.New(0, 1, 3)) {
		t.Errorf("ConceptUnion(3) = %v, %v", got, ok)
	}
	if _, ok := x.Matching(0, "x"); ok {
		t.Error("Matching of a non-number should fail")
	}
}

func TestForkRegister(t *testing.T) {
	x := build(t, []string{"a", "d"}, [][]string{{"1", "x"}, {"2", "x"}, {"3", "y"}})
	f := x.Fork()
	derived := Range(1.5, 2.5)
	s := f.Register(0, derived, caseset.New(1))
	if !s.Equal(caseset.New(1)) {
		t.Errorf("Register returned %v", s)
	}
	if _, ok := f.Block(0, derived); !ok {
		t.Error("fork should hold the derived value")
	}
	if _, ok := x.Block(0, derived); ok {
		t.Error("registration leaked into the parent index")
	}
	if len(f.Values(0)) != len(x.Values(0))+1 {
		t.Errorf("fork values = %d, parent = %d", len(f.Values(0)), len(x.Values(0)))
	}
	// existing entries win
	if again := f.Register(0, derived, caseset.New(0, 1)); !again.Equal(caseset.New(1)) {
		t.Errorf("re-register replaced block: %v", again)
	}
}

func TestIntervalTighten(t *testing.T) {
	iv := Interval{1, 6}.Tighten(Interval{2.5, 9})
	if iv != (Interval{2.5, 6}) {
		t.Errorf("Tighten = %v", iv)
	}
	if iv.Tighten(iv) != iv {
		t.Error("tightening a range with itself must be a no-op")
	}
	if got := Range(-3, 0.25).String(); got != "-3..0.25" {
		t.Errorf("String = %q", got)
	}
}
