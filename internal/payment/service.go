package payment

import (
	"context"
	"fmt"
	"time"

	"enquiry-platform/internal/enquiry"
)

// EnquiryReader is the slice of the enquiry store this service needs to check
// that a linkage target exists and has been converted.
type EnquiryReader interface {
	Get(ctx context.Context, id int64) (enquiry.Enquiry, error)
}

// Service manages payment records for converted enquiries.
type Service struct {
	store     Store
	enquiries EnquiryReader
	clock     func() time.Time
}

func NewService(store Store, enquiries EnquiryReader) *Service {
	return &Service{store: store, enquiries: enquiries, clock: time.Now}
}

// Create links a payment record to a converted enquiry. The enquiry must
// exist and carry a matter code; one record per enquiry.
func (s *Service) Create(ctx context.Context, in Payment) (Payment, error) {
	if in.EnquiryID <= 0 {
		return Payment{}, fmt.Errorf("%w: enquiryId required", ErrValidation)
	}
	if in.TotalAmount.IsNegative() || in.AmountPaid.IsNegative() {
		return Payment{}, fmt.Errorf("%w: amounts cannot be negative", ErrValidation)
	}

	e, err := s.enquiries.Get(ctx, in.EnquiryID)
	if err != nil {
		return Payment{}, err
	}
	if e.MatterCode == "" {
		return Payment{}, fmt.Errorf("%w: enquiry %s", ErrNotConverted, e.EnquiryCode)
	}

	now := s.clock().UTC()
	in.ID = 0
	if in.PaymentStatus == "" {
		in.PaymentStatus = DefaultStatus
	}
	in.AmountOutstanding = in.TotalAmount.Sub(in.AmountPaid)
	in.CreatedAt = now
	in.UpdatedAt = now

	return s.store.Insert(ctx, in)
}

func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, fmt.Errorf("%w: id required", ErrValidation)
	}
	return s.store.Get(ctx, id)
}

// GetByEnquiry returns the payment record linked to the enquiry.
func (s *Service) GetByEnquiry(ctx context.Context, enquiryID int64) (Payment, error) {
	if enquiryID <= 0 {
		return Payment{}, fmt.Errorf("%w: enquiryId required", ErrValidation)
	}
	return s.store.GetByEnquiry(ctx, enquiryID)
}

// List returns all payment records, newest first. Records whose enquiry has
// since been deleted are included; they remain on the books.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.store.List(ctx)
}

// Update applies a partial update. The outstanding amount is recomputed by
// the store from the merged total and paid figures.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Payment, error) {
	if id <= 0 {
		return Payment{}, fmt.Errorf("%w: id required", ErrValidation)
	}
	if p.TotalAmount != nil && p.TotalAmount.IsNegative() {
		return Payment{}, fmt.Errorf("%w: totalAmount cannot be negative", ErrValidation)
	}
	if p.AmountPaid != nil && p.AmountPaid.IsNegative() {
		return Payment{}, fmt.Errorf("%w: amountPaid cannot be negative", ErrValidation)
	}
	return s.store.Update(ctx, id, p)
}
