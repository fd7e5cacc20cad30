package payment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store used by tests.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[int64]Payment)}
}

func (s *MemoryStore) Insert(ctx context.Context, p Payment) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.EnquiryID == p.EnquiryID {
			return Payment{}, ErrConflict
		}
	}

	s.nextID++
	p.ID = s.nextID
	s.payments[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) GetByEnquiry(ctx context.Context, enquiryID int64) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.EnquiryID == enquiryID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, p Patch) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}

	updated := p.Apply(existing)
	updated.UpdatedAt = time.Now().UTC()
	s.payments[id] = updated
	return updated, nil
}
