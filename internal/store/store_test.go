package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mlem2/internal/caseset"
	"mlem2/internal/induce"
)

func sampleRun() *Run {
	return &Run{
		Dataset: "testdata/flu.d",
		RuleSet: "certain",
		Cases:   8,
		Elapsed: 1500 * time.Millisecond,
		Rules: []Rule{
			{Text: "(Temperature, very_high) -> (Flu, yes)", Covered: []int{1, 7}},
			{Text: "(Headache, no) -> (Flu, no)", Covered: []int{2}},
		},
		Incomplete: true,
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return map[string]Store{"sqlite": s, "memory": NewMemStore()}
}

func TestStore_SaveGetList(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first := sampleRun()
			id1, err := s.SaveRun(first)
			if err != nil {
				t.Fatalf("SaveRun: %v", err)
			}
			if first.ID != id1 || first.CreatedAt == "" {
				t.Errorf("SaveRun did not assign id/created_at: %+v", first)
			}
			second := sampleRun()
			second.RuleSet = "possible"
			id2, err := s.SaveRun(second)
			if err != nil {
				t.Fatalf("SaveRun: %v", err)
			}

			got, err := s.GetRun(id1)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if diff := cmp.Diff(first, got); diff != "" {
				t.Errorf("GetRun (-want +got):\n%s", diff)
			}

			list, err := s.ListRuns()
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			ids := make([]int64, 0, len(list))
			for _, r := range list {
				ids = append(ids, r.ID)
				if len(r.Rules) != 0 {
					t.Errorf("ListRuns should not load rules, run %d has %d", r.ID, len(r.Rules))
				}
			}
			if diff := cmp.Diff([]int64{id2, id1}, ids); diff != "" {
				t.Errorf("ListRuns order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_MissingAndDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if r, err := s.GetRun(42); err != nil || r != nil {
				t.Fatalf("GetRun(missing) = %+v, %v", r, err)
			}
			id, err := s.SaveRun(sampleRun())
			if err != nil {
				t.Fatalf("SaveRun: %v", err)
			}
			if err := s.DeleteRun(id); err != nil {
				t.Fatalf("DeleteRun: %v", err)
			}
			if r, err := s.GetRun(id); err != nil || r != nil {
				t.Errorf("GetRun after delete = %+v, %v", r, err)
			}
			if _, err := s.SaveRun(nil); err == nil {
				t.Error("SaveRun(nil) should fail")
			}
		})
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	s := NewMemStore()
	id, _ := s.SaveRun(sampleRun())
	got, _ := s.GetRun(id)
	got.Rules[0].Covered[0] = 99
	again, _ := s.GetRun(id)
	if again.Rules[0].Covered[0] != 1 {
		t.Error("MemStore leaked internal state")
	}
}

func TestOpen_MigratesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec(schemaV1); err != nil {
		t.Fatalf("create v1: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version(version) VALUES(1)"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO runs(dataset, ruleset, cases, incomplete, created_at) VALUES('old.d', 'possible', 3, 0, '2016-11-01T00:00:00Z')",
	); err != nil {
		t.Fatalf("insert v1 run: %v", err)
	}
	_ = db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&v); err != nil || v != schemaVersionV2 {
		t.Fatalf("schema version = %d, %v", v, err)
	}
	runs, err := s.ListRuns()
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns = %d runs, %v", len(runs), err)
	}
	if runs[0].Dataset != "old.d" || runs[0].Elapsed != 0 {
		t.Errorf("migrated run = %+v", runs[0])
	}
}

func TestNewRun(t *testing.T) {
	rules := []induce.Rule{{
		Decision: induce.Decision{Attribute: "d", Value: "d1"},
		Covered:  caseset.New(0, 2),
	}}
	r := NewRun("x.d", "certain", 3, false, rules, time.Second)
	want := []Rule{{Text: rules[0].String(), Covered: []int{0, 2}}}
	if diff := cmp.Diff(want, r.Rules, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("NewRun rules (-want +got):\n%s", diff)
	}
}
