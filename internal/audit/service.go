package audit

import (
	"context"
	"errors"
	"time"
)

// Repository is the persistence contract for the audit trail.
//
// It MUST be append-only. No Update/Delete methods are provided by design;
// the enquiry-delete cascade is handled by the enquiry store.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByEnquiry(ctx context.Context, enquiryID int64) ([]Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
}

const defaultListLimit = 100

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Service validates and records audit trail entries.
// Mutating writes that must be atomic with their audit append bypass this
// service and compose InsertTx inside their own transaction; Service covers
// standalone appends and all reads.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Record(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.EnquiryID <= 0 || e.UserID <= 0 {
		return ErrInvalidEntry
	}
	if !e.Action.Valid() {
		return ErrInvalidEntry
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) ListByEnquiry(ctx context.Context, enquiryID int64) ([]Record, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if enquiryID <= 0 {
		return nil, ErrInvalidEntry
	}
	return s.repo.ListByEnquiry(ctx, enquiryID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// StatusChange builds the entry recorded for every status transition.
func StatusChange(enquiryID, userID int64, oldStatus, newStatus string) Entry {
	return Entry{
		EnquiryID:   enquiryID,
		UserID:      userID,
		Action:      ActionStatusChanged,
		FieldName:   "currentStatus",
		OldValue:    oldStatus,
		NewValue:    newStatus,
		Description: "Status changed from " + oldStatus + " to " + newStatus,
	}
}

// Created builds the entry recorded when an enquiry is created.
func Created(enquiryID, userID int64, enquiryCode, clientName string) Entry {
	return Entry{
		EnquiryID:   enquiryID,
		UserID:      userID,
		Action:      ActionCreated,
		Description: "Enquiry " + enquiryCode + " created for client " + clientName,
	}
}

// Updated builds the entry recorded for a generic field update.
func Updated(enquiryID, userID int64, description string) Entry {
	return Entry{
		EnquiryID:   enquiryID,
		UserID:      userID,
		Action:      ActionUpdated,
		Description: description,
	}
}
