package enquiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enquiry-platform/internal/audit"
	"enquiry-platform/pkg/logger"
)

// MintLock serializes matter-code minting across replicas. Acquire blocks
// until the lock is held or ctx is done, and returns the release func.
type MintLock interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Notifier receives lifecycle events. Delivery is best-effort: the service
// logs failures and never lets them affect the triggering mutation.
type Notifier interface {
	EnquiryStatusChanged(ctx context.Context, note StatusChangeNote) error
}

// StatusChangeNote describes one status transition for notification dispatch.
type StatusChangeNote struct {
	EnquiryID   int64
	EnquiryCode string
	ClientName  string
	OldStatus   Status
	NewStatus   Status
}

// Service is the enquiry lifecycle manager.
//
// It owns the status state machine (open transition graph), identifier
// minting on create/convert, and the audit entries that accompany every
// mutation. Status-change logging happens here, not in callers, so it can
// never be skipped.
type Service struct {
	store    Store
	gen      *Generator
	notifier Notifier // optional
	mint     MintLock // optional
	clock    func() time.Time
}

func NewService(store Store, gen *Generator, notifier Notifier, mint MintLock) *Service {
	return &Service{store: store, gen: gen, notifier: notifier, mint: mint, clock: time.Now}
}

// CreateResult is returned by Create.
type CreateResult struct {
	ID          int64  `json:"id"`
	EnquiryCode string `json:"enquiryId"`
}

// UpdateResult is returned by Update. WasTerminal flags a transition out of
// a terminal-in-practice status; the operation still succeeds.
type UpdateResult struct {
	Enquiry     Enquiry `json:"enquiry"`
	WasTerminal bool    `json:"wasTerminal,omitempty"`
}

// Insert candidates can collide under concurrent creation; each retry
// re-reads MAX(id), which the competing insert has already raised.
const maxMintAttempts = 5

// Create validates and persists a new enquiry.
// Requires DateOfEnquiry and ClientName. The enquiry code is minted here;
// identity and conversion fields supplied by the caller are discarded.
func (s *Service) Create(ctx context.Context, in Enquiry, actorUserID int64) (CreateResult, error) {
	if actorUserID <= 0 {
		return CreateResult{}, fmt.Errorf("%w: actor required", ErrValidation)
	}
	if in.DateOfEnquiry.IsZero() {
		return CreateResult{}, fmt.Errorf("%w: dateOfEnquiry is required", ErrValidation)
	}
	if in.ClientName == "" {
		return CreateResult{}, fmt.Errorf("%w: clientName is required", ErrValidation)
	}
	if in.CurrentStatus == "" {
		in.CurrentStatus = StatusPending
	}
	if !in.CurrentStatus.Valid() {
		return CreateResult{}, fmt.Errorf("%w: unknown status %q", ErrValidation, in.CurrentStatus)
	}

	now := s.clock().UTC()
	in.ID = 0
	in.MatterCode = ""
	in.ConversionDate = nil
	in.EngagementLetterDate = nil
	in.CreatedBy = actorUserID
	in.CreatedAt = now
	in.UpdatedAt = now

	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		code, err := s.gen.NextEnquiryCode(ctx)
		if err != nil {
			return CreateResult{}, err
		}
		in.EnquiryCode = code

		log := audit.Created(0, actorUserID, code, in.ClientName)
		log.CreatedAt = now

		created, err := s.store.Insert(ctx, in, log)
		if err == nil {
			return CreateResult{ID: created.ID, EnquiryCode: created.EnquiryCode}, nil
		}
		if !errors.Is(err, ErrConflict) {
			return CreateResult{}, err
		}
		lastErr = err
	}
	return CreateResult{}, fmt.Errorf("enquiry code minting exhausted retries: %w", lastErr)
}

func (s *Service) Get(ctx context.Context, id int64) (Enquiry, error) {
	if id <= 0 {
		return Enquiry{}, fmt.Errorf("%w: id required", ErrValidation)
	}
	return s.store.Get(ctx, id)
}

// List returns all enquiries, newest first.
func (s *Service) List(ctx context.Context) ([]Enquiry, error) {
	return s.store.List(ctx)
}

// Update merges a partial update into an existing enquiry.
//
// When the patch sets ConversionDate and the record has no matter code yet,
// one is minted for the conversion year and persisted in the same write. A
// status transition is audited as status_changed (old and new recorded); any
// other change is audited as updated.
func (s *Service) Update(ctx context.Context, id int64, p Patch, actorUserID int64) (UpdateResult, error) {
	if id <= 0 {
		return UpdateResult{}, fmt.Errorf("%w: id required", ErrValidation)
	}
	if actorUserID <= 0 {
		return UpdateResult{}, fmt.Errorf("%w: actor required", ErrValidation)
	}
	if p.CurrentStatus != nil && !p.CurrentStatus.Valid() {
		return UpdateResult{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *p.CurrentStatus)
	}
	if p.ClientName != nil && *p.ClientName == "" {
		return UpdateResult{}, fmt.Errorf("%w: clientName cannot be cleared", ErrValidation)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}

	// Matter code minting and the subsequent write form one critical
	// section: yearly numbering reads the conversion count that the write
	// is about to change.
	if p.ConversionDate != nil && existing.MatterCode == "" && s.mint != nil {
		release, err := s.mint.Acquire(ctx, "mint:matter_code")
		if err != nil {
			return UpdateResult{}, err
		}
		defer release()
	}

	matterCode := ""
	if p.ConversionDate != nil && existing.MatterCode == "" {
		matterCode, err = s.gen.NextMatterCode(ctx, *p.ConversionDate)
		if err != nil {
			return UpdateResult{}, err
		}
	}

	now := s.clock().UTC()
	statusChanged := p.CurrentStatus != nil && *p.CurrentStatus != existing.CurrentStatus

	var logs []audit.Entry
	if statusChanged {
		log := audit.StatusChange(id, actorUserID, string(existing.CurrentStatus), string(*p.CurrentStatus))
		log.CreatedAt = now
		logs = append(logs, log)
	} else if !p.Empty() {
		log := audit.Updated(id, actorUserID, fmt.Sprintf("Enquiry %s updated", existing.EnquiryCode))
		log.CreatedAt = now
		logs = append(logs, log)
	}

	updated, err := s.store.Update(ctx, id, p, matterCode, logs)
	if err != nil {
		return UpdateResult{}, err
	}

	if statusChanged {
		s.dispatchStatusChange(ctx, updated, existing.CurrentStatus)
	}

	return UpdateResult{
		Enquiry:     updated,
		WasTerminal: statusChanged && existing.CurrentStatus.Terminal(),
	}, nil
}

// Delete removes an enquiry. Its audit trail goes with it by cascade; a
// linked payment record is deliberately left in place for bookkeeping.
func (s *Service) Delete(ctx context.Context, id int64, actorUserID int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id required", ErrValidation)
	}
	if actorUserID <= 0 {
		return fmt.Errorf("%w: actor required", ErrValidation)
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) dispatchStatusChange(ctx context.Context, e Enquiry, old Status) {
	if s.notifier == nil {
		return
	}
	note := StatusChangeNote{
		EnquiryID:   e.ID,
		EnquiryCode: e.EnquiryCode,
		ClientName:  e.ClientName,
		OldStatus:   old,
		NewStatus:   e.CurrentStatus,
	}
	if err := s.notifier.EnquiryStatusChanged(ctx, note); err != nil {
		logger.From(ctx).Warn("status change notification failed",
			"enquiry", e.EnquiryCode, "err", err)
	}
}
