package store

import (
	"errors"
	"sort"
	"sync"
)

// MemStore implements Store in memory. Safe for concurrent use.
type MemStore struct {
	mu   sync.Mutex
	runs map[int64]*Run
	next int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[int64]*Run)}
}

func (s *MemStore) SaveRun(run *Run) (int64, error) {
	if run == nil {
		return 0, errors.New("run is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if run.CreatedAt == "" {
		run.CreatedAt = nowUTC()
	}
	run.ID = s.next
	s.runs[run.ID] = copyRun(run, true)
	return run.ID, nil
}

func (s *MemStore) GetRun(id int64) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return copyRun(r, true), nil
}

func (s *MemStore) ListRuns() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		list = append(list, copyRun(r, false))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *MemStore) DeleteRun(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func (s *MemStore) Close() error { return nil }

func copyRun(r *Run, withRules bool) *Run {
	cp := *r
	cp.Rules = nil
	if withRules {
		cp.Rules = make([]Rule, len(r.Rules))
		for i, rule := range r.Rules {
			cp.Rules[i] = Rule{Text: rule.Text, Covered: append([]int(nil), rule.Covered...)}
		}
	}
	return &cp
}
