package repo

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process CaseStore used by tests and local runs
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	cases  map[int64]*Case
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases: make(map[int64]*Case),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	c.ID = s.nextID
	c.CreatedAt, c.UpdatedAt = now, now
	s.cases[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, labID string, id int64) (*Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[id]
	if !ok || c.LabID != labID {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func matches(c *Case, labID string, f Filter) bool {
	switch {
	case c.LabID != labID:
		return false
	case f.Status != nil && c.Status != *f.Status:
		return false
	case f.DoctorID != nil && c.DoctorID != *f.DoctorID:
		return false
	case f.ProductID != nil && c.ProductID != *f.ProductID:
		return false
	case f.CaseType != nil && (c.CaseType == nil || *c.CaseType != *f.CaseType):
		return false
	case f.Priority != nil && c.Priority != *f.Priority:
		return false
	case f.RushOrder != nil && c.RushOrder != *f.RushOrder:
		return false
	}
	return true
}

func (s *MemoryStore) List(_ context.Context, labID string, f Filter, p Page) ([]*Case, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []*Case
	for _, c := range s.cases {
		if matches(c, labID, f) {
			hits = append(hits, c)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].ID > hits[j].ID
	})

	total := len(hits)
	out := []*Case{}
	start := p.Offset()
	if start >= total {
		return out, total, nil
	}
	end := start + p.Size
	if p.Size <= 0 || end > total {
		end = total
	}
	for _, c := range hits[start:end] {
		out = append(out, c.Clone())
	}
	return out, total, nil
}

func (s *MemoryStore) Update(_ context.Context, labID string, id int64, mutate func(*Case) error) (*Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.cases[id]
	if !ok || current.LabID != labID {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID, next.LabID, next.DoctorID, next.ProductID = current.ID, current.LabID, current.DoctorID, current.ProductID
	next.CreatedBy, next.CreatedAt = current.CreatedBy, current.CreatedAt
	next.UpdatedAt = s.now()

	s.cases[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, labID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[id]
	if !ok || c.LabID != labID {
		return ErrNotFound
	}
	delete(s.cases, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

var (
	_ CaseStore = (*MemoryStore)(nil)
	_ CaseStore = (*PostgresStore)(nil)
)
