package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store used by tests. Enquiry creation counts
// come from the optional counter func; tests usually inject a literal map.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]User
	counter func(ctx context.Context) (map[int64]int64, error)
}

func NewMemoryStore(counter func(ctx context.Context) (map[int64]int64, error)) *MemoryStore {
	return &MemoryStore{users: make(map[int64]User), counter: counter}
}

func (s *MemoryStore) List(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSignedIn.Equal(out[j].LastSignedIn) {
			return out[i].LastSignedIn.After(out[j].LastSignedIn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.users {
		if existing.OpenID == u.OpenID {
			existing.Name = u.Name
			existing.Email = u.Email
			existing.LastSignedIn = u.LastSignedIn
			existing.UpdatedAt = u.UpdatedAt
			s.users[id] = existing
			return existing, nil
		}
	}

	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) UpdateRole(ctx context.Context, id int64, role string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id int64, status string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) EnquiryCounts(ctx context.Context) (map[int64]int64, error) {
	if s.counter == nil {
		return map[int64]int64{}, nil
	}
	return s.counter(ctx)
}
