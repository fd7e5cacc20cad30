package payment

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: no payment record for the given id or enquiry.
	ErrNotFound = errors.New("payment: not found")
	// ErrValidation: missing or malformed required input.
	ErrValidation = errors.New("payment: invalid input")
	// ErrConflict: the enquiry already has a payment record.
	ErrConflict = errors.New("payment: enquiry already has a payment record")
	// ErrNotConverted: payments attach only to converted enquiries.
	ErrNotConverted = errors.New("payment: enquiry has no matter code")
)

// Store is the persistence contract for payment records.
// Deleting an enquiry never deletes its payment; there is no cascade here.
type Store interface {
	// Insert persists a new record. Returns ErrConflict when the enquiry is
	// already linked to one.
	Insert(ctx context.Context, p Payment) (Payment, error)

	Get(ctx context.Context, id int64) (Payment, error)

	// GetByEnquiry returns the record linked to the enquiry, or ErrNotFound.
	GetByEnquiry(ctx context.Context, enquiryID int64) (Payment, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]Payment, error)

	Update(ctx context.Context, id int64, p Patch) (Payment, error)
}
