package audit

import (
	"context"
	"testing"
	"time"
)

func TestRecord_RejectsInvalidEntries(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Record(context.Background(), Entry{UserID: 1, Action: ActionCreated}); err != ErrInvalidEntry {
		t.Fatalf("expected ErrInvalidEntry for missing enquiry id, got %v", err)
	}
	if err := svc.Record(context.Background(), Entry{EnquiryID: 1, Action: ActionCreated}); err != ErrInvalidEntry {
		t.Fatalf("expected ErrInvalidEntry for missing user id, got %v", err)
	}
	if err := svc.Record(context.Background(), Entry{EnquiryID: 1, UserID: 1, Action: "bogus"}); err != ErrInvalidEntry {
		t.Fatalf("expected ErrInvalidEntry for unknown action, got %v", err)
	}
}

func TestRecord_StampsCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Unix(1700000000, 0).UTC()
	svc.clock = func() time.Time { return now }

	if err := svc.Record(context.Background(), StatusChange(1, 2, "Pending", "Contacted")); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := repo.Entries()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Fatalf("expected clock timestamp, got %v", got[0].CreatedAt)
	}
	if got[0].Action != ActionStatusChanged || got[0].FieldName != "currentStatus" {
		t.Fatalf("unexpected entry: %+v", got[0])
	}
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	base := time.Unix(1700000000, 0).UTC()
	for i := 0; i < 5; i++ {
		e := Updated(1, 1, "change")
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := svc.Record(context.Background(), e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	page, err := svc.List(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}
	if !page[0].CreatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("expected offset to skip the newest record, got %v", page[0].CreatedAt)
	}
}

func TestListByEnquiry_FiltersOtherEnquiries(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_ = svc.Record(context.Background(), Created(1, 1, "ENQ-0001", "Acme"))
	_ = svc.Record(context.Background(), Created(2, 1, "ENQ-0002", "Globex"))

	recs, err := svc.ListByEnquiry(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].EnquiryID != 1 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
