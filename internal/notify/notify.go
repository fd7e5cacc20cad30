// Package notify delivers lifecycle event notifications. Delivery is always
// best-effort; callers log failures and move on.
package notify

import (
	"context"

	"enquiry-platform/internal/enquiry"
	"enquiry-platform/pkg/logger"
)

// LogNotifier writes status-change events to the structured log. It is the
// fallback when no mail transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) EnquiryStatusChanged(ctx context.Context, note enquiry.StatusChangeNote) error {
	logger.From(ctx).Info("enquiry status changed",
		"enquiry", note.EnquiryCode,
		"client", note.ClientName,
		"from", string(note.OldStatus),
		"to", string(note.NewStatus),
	)
	return nil
}
