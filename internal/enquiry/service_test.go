package enquiry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"enquiry-platform/internal/audit"

	"github.com/shopspring/decimal"
)

func newTestService() (*Service, *MemoryStore, *audit.MemoryRepo) {
	audits := audit.NewMemoryRepo()
	store := NewMemoryStore(audits)
	svc := NewService(store, NewGenerator(store), nil, nil)
	svc.clock = func() time.Time {
		return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, store, audits
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }

func statusPtr(s Status) *Status { return &s }

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    Enquiry
		actor int64
	}{
		{"missing actor", Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 0},
		{"missing dateOfEnquiry", Enquiry{ClientName: "Acme"}, 1},
		{"missing clientName", Enquiry{DateOfEnquiry: date(2025, 1, 10)}, 1},
		{"unknown status", Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme", CurrentStatus: "Open"}, 1},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.in, tc.actor); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestCreateMintsCodeAndDefaults(t *testing.T) {
	svc, store, audits := newTestService()
	ctx := context.Background()

	res, err := svc.Create(ctx, Enquiry{
		DateOfEnquiry: date(2025, 1, 10),
		ClientName:    "Acme Holdings",
		// Caller-supplied identity and conversion fields must be ignored.
		EnquiryCode:    "ENQ-9999",
		MatterCode:     "MAT-2020-001",
		ConversionDate: datePtr(2020, 1, 1),
	}, 7)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.EnquiryCode != "ENQ-0001" {
		t.Fatalf("EnquiryCode = %q, want ENQ-0001", res.EnquiryCode)
	}

	e, err := store.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.CurrentStatus != StatusPending {
		t.Errorf("CurrentStatus = %q, want Pending", e.CurrentStatus)
	}
	if e.MatterCode != "" || e.ConversionDate != nil {
		t.Errorf("conversion fields leaked through create: %q %v", e.MatterCode, e.ConversionDate)
	}
	if e.CreatedBy != 7 {
		t.Errorf("CreatedBy = %d, want 7", e.CreatedBy)
	}

	entries := audits.Entries()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Action != audit.ActionCreated || got.EnquiryID != res.ID || got.UserID != 7 {
		t.Errorf("creation audit entry = %+v", got)
	}
}

func TestCreateSequentialCodes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		res, err := svc.Create(ctx, Enquiry{
			DateOfEnquiry: date(2025, 1, 10),
			ClientName:    fmt.Sprintf("Client %d", i),
		}, 1)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		want := fmt.Sprintf("ENQ-%04d", i)
		if res.EnquiryCode != want {
			t.Fatalf("EnquiryCode = %q, want %q", res.EnquiryCode, want)
		}
	}
}

func TestCreateConcurrentNoDuplicates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	const n = 5
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Create(ctx, Enquiry{
				DateOfEnquiry: date(2025, 1, 10),
				ClientName:    fmt.Sprintf("Client %d", i),
			}, 1)
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			codes <- res.EnquiryCode
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("duplicate enquiry code %q", code)
		}
		seen[code] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d codes, want %d", len(seen), n)
	}
	for i := 1; i <= n; i++ {
		want := fmt.Sprintf("ENQ-%04d", i)
		if !seen[want] {
			t.Errorf("missing code %q (no gaps expected)", want)
		}
	}
}

func TestUpdateMintsMatterCodeOnConversion(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 11), ClientName: "Globex"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := svc.Update(ctx, first.ID, Patch{
		CurrentStatus:  statusPtr(StatusConverted),
		ConversionDate: datePtr(2025, 3, 1),
	}, 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Enquiry.MatterCode != "MAT-2025-001" {
		t.Fatalf("MatterCode = %q, want MAT-2025-001", res.Enquiry.MatterCode)
	}

	res2, err := svc.Update(ctx, second.ID, Patch{
		CurrentStatus:  statusPtr(StatusConverted),
		ConversionDate: datePtr(2025, 6, 20),
	}, 1)
	if err != nil {
		t.Fatalf("Update second: %v", err)
	}
	if res2.Enquiry.MatterCode != "MAT-2025-002" {
		t.Fatalf("second MatterCode = %q, want MAT-2025-002", res2.Enquiry.MatterCode)
	}
}

func TestMatterCodeMintedOnceAndImmutable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, err := svc.Update(ctx, created.ID, Patch{ConversionDate: datePtr(2025, 3, 1)}, 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	minted := res.Enquiry.MatterCode
	if minted == "" {
		t.Fatal("matter code not minted on conversion")
	}

	// A later conversion-date change must not re-mint or alter the code.
	res, err = svc.Update(ctx, created.ID, Patch{ConversionDate: datePtr(2026, 1, 5)}, 1)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if res.Enquiry.MatterCode != minted {
		t.Fatalf("MatterCode changed from %q to %q", minted, res.Enquiry.MatterCode)
	}
}

func TestUpdateWithoutConversionDateMintsNothing(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, err := svc.Update(ctx, created.ID, Patch{
		CurrentStatus: statusPtr(StatusConverted),
		ProposalValue: decPtrOf("15000.00"),
	}, 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Enquiry.MatterCode != "" {
		t.Fatalf("MatterCode = %q, want empty without conversion date", res.Enquiry.MatterCode)
	}
}

func TestUpdateRecordsStatusChangeAudit(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, Patch{CurrentStatus: statusPtr(StatusContacted)}, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var found bool
	for _, e := range audits.Entries() {
		if e.Action != audit.ActionStatusChanged {
			continue
		}
		found = true
		if e.EnquiryID != created.ID || e.FieldName != "currentStatus" {
			t.Errorf("status change entry = %+v", e)
		}
		if e.OldValue != string(StatusPending) || e.NewValue != string(StatusContacted) {
			t.Errorf("old/new = %q/%q, want Pending/Contacted", e.OldValue, e.NewValue)
		}
	}
	if !found {
		t.Fatal("no status_changed audit entry recorded")
	}
}

func TestUpdateRecordsGenericUpdateAudit(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, Patch{InternalNotes: strPtr("spoke on phone")}, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}

	entries := audits.Entries()
	last := entries[len(entries)-1]
	if last.Action != audit.ActionUpdated {
		t.Fatalf("last audit action = %q, want updated", last.Action)
	}
}

func TestUpdateFromTerminalStatusFlagsWasTerminal(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, Patch{CurrentStatus: statusPtr(StatusDeclined)}, 1); err != nil {
		t.Fatalf("Update to Declined: %v", err)
	}

	// Reopening a declined enquiry is allowed but flagged.
	res, err := svc.Update(ctx, created.ID, Patch{CurrentStatus: statusPtr(StatusContacted)}, 1)
	if err != nil {
		t.Fatalf("reopen Update: %v", err)
	}
	if !res.WasTerminal {
		t.Fatal("WasTerminal = false, want true when leaving Declined")
	}
	if res.Enquiry.CurrentStatus != StatusContacted {
		t.Fatalf("CurrentStatus = %q, want Contacted", res.Enquiry.CurrentStatus)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Update(context.Background(), 42, Patch{InternalNotes: strPtr("x")}, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascadesAuditTrail(t *testing.T) {
	svc, store, audits := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, Patch{CurrentStatus: statusPtr(StatusContacted)}, 1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(audits.Entries()) != 2 {
		t.Fatalf("audit entries before delete = %d, want 2", len(audits.Entries()))
	}

	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: %v, want ErrNotFound", err)
	}
	if got := len(audits.Entries()); got != 0 {
		t.Fatalf("audit entries after delete = %d, want 0 (cascade)", got)
	}
}

func TestDeletedCodesAreNotReused(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	next, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 11), ClientName: "Globex"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if next.EnquiryCode != "ENQ-0002" {
		t.Fatalf("EnquiryCode after delete = %q, want ENQ-0002", next.EnquiryCode)
	}
}

type stubLock struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (l *stubLock) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.acquired++
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

func TestUpdateHoldsMintLockOnlyWhenMinting(t *testing.T) {
	audits := audit.NewMemoryRepo()
	store := NewMemoryStore(audits)
	lock := &stubLock{}
	svc := NewService(store, NewGenerator(store), nil, lock)
	ctx := context.Background()

	created, err := svc.Create(ctx, Enquiry{DateOfEnquiry: date(2025, 1, 10), ClientName: "Acme"}, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, Patch{InternalNotes: strPtr("note")}, 1); err != nil {
		t.Fatalf("plain Update: %v", err)
	}
	if lock.acquired != 0 {
		t.Fatalf("lock acquired on non-minting update: %d", lock.acquired)
	}

	if _, err := svc.Update(ctx, created.ID, Patch{ConversionDate: datePtr(2025, 3, 1)}, 1); err != nil {
		t.Fatalf("converting Update: %v", err)
	}
	if lock.acquired != 1 || lock.released != 1 {
		t.Fatalf("lock acquire/release = %d/%d, want 1/1", lock.acquired, lock.released)
	}
}

func TestStoreUnavailableFailsClosed(t *testing.T) {
	audits := audit.NewMemoryRepo()
	store := NewMemoryStore(audits)
	broken := &brokenSequence{Store: store}
	svc := NewService(broken, NewGenerator(broken), nil, nil)

	_, err := svc.Create(context.Background(), Enquiry{
		DateOfEnquiry: date(2025, 1, 10),
		ClientName:    "Acme",
	}, 1)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	list, _ := store.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("partial record written: %d", len(list))
	}
}

type brokenSequence struct {
	Store
}

func (b *brokenSequence) MaxEnquiryNumber(ctx context.Context) (int64, error) {
	return 0, ErrStoreUnavailable
}

func decPtrOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
