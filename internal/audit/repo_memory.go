package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory append-only repository for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{nextID: 1} }

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) ListByEnquiry(ctx context.Context, enquiryID int64) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, e := range r.entries {
		if e.EnquiryID == enquiryID {
			out = append(out, Record{Entry: e})
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Record, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, Record{Entry: e})
	}
	sortNewestFirst(all)
	if offset >= len(all) {
		return []Record{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// DeleteByEnquiry models the ON DELETE CASCADE the Postgres schema applies.
// Only the in-memory enquiry store calls this.
func (r *MemoryRepo) DeleteByEnquiry(enquiryID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.EnquiryID != enquiryID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Entries returns a copy of all stored entries in append order.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
