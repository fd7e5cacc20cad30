package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"enquiry-platform/internal/audit"
	"enquiry-platform/internal/enquiry"

	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*Service, *enquiry.Service, *enquiry.MemoryStore) {
	t.Helper()
	audits := audit.NewMemoryRepo()
	enqStore := enquiry.NewMemoryStore(audits)
	enqSvc := enquiry.NewService(enqStore, enquiry.NewGenerator(enqStore), nil, nil)
	svc := NewService(NewMemoryStore(), enqStore)
	return svc, enqSvc, enqStore
}

func convertedEnquiry(t *testing.T, enqSvc *enquiry.Service) int64 {
	t.Helper()
	ctx := context.Background()
	created, err := enqSvc.Create(ctx, enquiry.Enquiry{
		DateOfEnquiry: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		ClientName:    "Acme",
	}, 1)
	if err != nil {
		t.Fatalf("create enquiry: %v", err)
	}
	conv := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	status := enquiry.StatusConverted
	if _, err := enqSvc.Update(ctx, created.ID, enquiry.Patch{
		CurrentStatus:  &status,
		ConversionDate: &conv,
	}, 1); err != nil {
		t.Fatalf("convert enquiry: %v", err)
	}
	return created.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateRequiresConvertedEnquiry(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()

	created, err := enqSvc.Create(ctx, enquiry.Enquiry{
		DateOfEnquiry: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		ClientName:    "Globex",
	}, 1)
	if err != nil {
		t.Fatalf("create enquiry: %v", err)
	}

	_, err = svc.Create(ctx, Payment{EnquiryID: created.ID, TotalAmount: dec("1000")})
	if !errors.Is(err, ErrNotConverted) {
		t.Fatalf("err = %v, want ErrNotConverted", err)
	}

	_, err = svc.Create(ctx, Payment{EnquiryID: 999, TotalAmount: dec("1000")})
	if !errors.Is(err, enquiry.ErrNotFound) {
		t.Fatalf("err = %v, want enquiry.ErrNotFound", err)
	}
}

func TestCreateDefaultsAndOutstanding(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()
	enqID := convertedEnquiry(t, enqSvc)

	p, err := svc.Create(ctx, Payment{
		EnquiryID:   enqID,
		TotalAmount: dec("10000.00"),
		AmountPaid:  dec("2500.00"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PaymentStatus != DefaultStatus {
		t.Errorf("PaymentStatus = %q, want %q", p.PaymentStatus, DefaultStatus)
	}
	if !p.AmountOutstanding.Equal(dec("7500.00")) {
		t.Errorf("AmountOutstanding = %s, want 7500.00", p.AmountOutstanding)
	}
}

func TestCreateRejectsSecondRecordForEnquiry(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()
	enqID := convertedEnquiry(t, enqSvc)

	if _, err := svc.Create(ctx, Payment{EnquiryID: enqID, TotalAmount: dec("1000")}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := svc.Create(ctx, Payment{EnquiryID: enqID, TotalAmount: dec("2000")}); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Create err = %v, want ErrConflict", err)
	}
}

func TestCreateRejectsNegativeAmounts(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	enqID := convertedEnquiry(t, enqSvc)

	_, err := svc.Create(context.Background(), Payment{EnquiryID: enqID, TotalAmount: dec("-5")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateRecomputesOutstanding(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()
	enqID := convertedEnquiry(t, enqSvc)

	p, err := svc.Create(ctx, Payment{EnquiryID: enqID, TotalAmount: dec("10000")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid := dec("4000")
	updated, err := svc.Update(ctx, p.ID, Patch{AmountPaid: &paid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.AmountOutstanding.Equal(dec("6000")) {
		t.Errorf("AmountOutstanding = %s, want 6000", updated.AmountOutstanding)
	}

	total := dec("12000")
	updated, err = svc.Update(ctx, p.ID, Patch{TotalAmount: &total})
	if err != nil {
		t.Fatalf("Update total: %v", err)
	}
	if !updated.AmountOutstanding.Equal(dec("8000")) {
		t.Errorf("AmountOutstanding = %s, want 8000", updated.AmountOutstanding)
	}
}

func TestUpdateMilestones(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()
	enqID := convertedEnquiry(t, enqSvc)

	p, err := svc.Create(ctx, Payment{EnquiryID: enqID, TotalAmount: dec("9000")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	retainer := dec("3000")
	retainerDate := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	status := "Retainer Paid"
	updated, err := svc.Update(ctx, p.ID, Patch{
		RetainerAmount: &retainer,
		RetainerDate:   &retainerDate,
		PaymentStatus:  &status,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.RetainerAmount == nil || !updated.RetainerAmount.Equal(retainer) {
		t.Errorf("RetainerAmount = %v, want 3000", updated.RetainerAmount)
	}
	if updated.RetainerDate == nil || !updated.RetainerDate.Equal(retainerDate) {
		t.Errorf("RetainerDate = %v, want %v", updated.RetainerDate, retainerDate)
	}
	if updated.PaymentStatus != status {
		t.Errorf("PaymentStatus = %q, want %q", updated.PaymentStatus, status)
	}
}

func TestPaymentSurvivesEnquiryDeletion(t *testing.T) {
	svc, enqSvc, _ := setup(t)
	ctx := context.Background()
	enqID := convertedEnquiry(t, enqSvc)

	p, err := svc.Create(ctx, Payment{EnquiryID: enqID, TotalAmount: dec("5000")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := enqSvc.Delete(ctx, enqID, 1); err != nil {
		t.Fatalf("delete enquiry: %v", err)
	}

	// The record stays on the books, reachable directly and via List.
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get after enquiry delete: %v", err)
	}
	if got.EnquiryID != enqID {
		t.Errorf("EnquiryID = %d, want %d", got.EnquiryID, enqID)
	}
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List len = %d, want 1", len(all))
	}
}
