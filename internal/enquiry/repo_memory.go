package enquiry

import (
	"context"
	"sort"
	"sync"
	"time"

	"enquiry-platform/internal/audit"
)

// MemoryStore is the in-memory Store used by tests. It shares a lock with an
// audit.MemoryRepo so that mutation plus audit append behaves like the
// Postgres transaction.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	enquiries map[int64]Enquiry
	audits    *audit.MemoryRepo
}

func NewMemoryStore(audits *audit.MemoryRepo) *MemoryStore {
	return &MemoryStore{
		enquiries: make(map[int64]Enquiry),
		audits:    audits,
	}
}

func (s *MemoryStore) Insert(ctx context.Context, e Enquiry, log audit.Entry) (Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.enquiries {
		if existing.EnquiryCode == e.EnquiryCode {
			return Enquiry{}, ErrConflict
		}
	}

	s.nextID++
	e.ID = s.nextID
	s.enquiries[e.ID] = e

	log.EnquiryID = e.ID
	if s.audits != nil {
		if err := s.audits.Append(ctx, log); err != nil {
			delete(s.enquiries, e.ID)
			return Enquiry{}, err
		}
	}
	return e, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enquiries[id]
	if !ok {
		return Enquiry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Enquiry, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, p Patch, matterCode string, logs []audit.Entry) (Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enquiries[id]
	if !ok {
		return Enquiry{}, ErrNotFound
	}

	updated := p.Apply(e)
	if matterCode != "" {
		updated.MatterCode = matterCode
	}
	updated.UpdatedAt = time.Now().UTC()
	s.enquiries[id] = updated

	if s.audits != nil {
		for _, log := range logs {
			log.EnquiryID = id
			if err := s.audits.Append(ctx, log); err != nil {
				s.enquiries[id] = e
				return Enquiry{}, err
			}
		}
	}
	return updated, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.enquiries[id]; !ok {
		return ErrNotFound
	}
	delete(s.enquiries, id)
	if s.audits != nil {
		s.audits.DeleteByEnquiry(id)
	}
	return nil
}

// MaxEnquiryNumber mirrors MAX(id) over a serial column: deletions do not
// shrink it, so issued enquiry codes are never reused.
func (s *MemoryStore) MaxEnquiryNumber(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID, nil
}

func (s *MemoryStore) CountConversionsInYear(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, e := range s.enquiries {
		if e.ConversionDate != nil && e.ConversionDate.Year() == year {
			n++
		}
	}
	return n, nil
}
