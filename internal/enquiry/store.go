package enquiry

import (
	"context"
	"errors"

	"enquiry-platform/internal/audit"
)

var (
	// ErrNotFound: the referenced enquiry id does not exist.
	ErrNotFound = errors.New("enquiry: not found")
	// ErrValidation: missing or malformed required input.
	ErrValidation = errors.New("enquiry: invalid input")
	// ErrConflict: duplicate natural key (enquiry code) on insert.
	ErrConflict = errors.New("enquiry: duplicate enquiry code")
	// ErrStoreUnavailable: the persistence layer is unreachable. Operations
	// fail closed; no identifier is issued and no partial record is written.
	ErrStoreUnavailable = errors.New("enquiry: store unavailable")
)

// Store is the persistence contract for enquiries.
//
// Mutations take the audit entries that must land with them: implementations
// write the record and its audit rows atomically (single transaction in
// Postgres, single lock section in memory). Delete cascades the enquiry's
// audit trail but never touches payment rows.
type Store interface {
	// Insert persists a new enquiry and its creation audit entry, filling
	// the entry's enquiry id. Returns ErrConflict when the enquiry code is
	// already taken.
	Insert(ctx context.Context, e Enquiry, log audit.Entry) (Enquiry, error)

	Get(ctx context.Context, id int64) (Enquiry, error)

	// List returns all enquiries, newest first.
	List(ctx context.Context) ([]Enquiry, error)

	// Update applies the patch plus an optional freshly minted matter code
	// ("" = leave untouched) and appends the given audit entries, all in one
	// write. Returns the updated record.
	Update(ctx context.Context, id int64, p Patch, matterCode string, logs []audit.Entry) (Enquiry, error)

	// Delete removes the enquiry; its audit rows go with it by cascade.
	Delete(ctx context.Context, id int64) error

	// MaxEnquiryNumber returns the highest surrogate id in the table
	// (0 when empty). Deletions never shrink it, so derived enquiry codes
	// are never reused.
	MaxEnquiryNumber(ctx context.Context) (int64, error)

	// CountConversionsInYear counts enquiries whose conversion date falls
	// within the given calendar year.
	CountConversionsInYear(ctx context.Context, year int) (int64, error)
}
