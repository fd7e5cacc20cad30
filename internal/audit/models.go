package audit

import "time"

// Entry is an immutable, append-only audit trail record for one enquiry event.
//
// Invariants:
// - Entries are never updated.
// - The only deletion path is the cascade that fires when the parent enquiry
//   is removed; no code path deletes individual rows.
//
// Storage (Postgres): table audit_logs, INSERT-only, with
// enquiry_id REFERENCES enquiries(id) ON DELETE CASCADE.
type Entry struct {
	ID        int64  `json:"id" db:"id"`
	EnquiryID int64  `json:"enquiryId" db:"enquiry_id"`
	UserID    int64  `json:"userId" db:"user_id"`
	Action    Action `json:"action" db:"action"`

	// Field-level change detail; empty for create/delete events.
	FieldName string `json:"fieldName,omitempty" db:"field_name"`
	OldValue  string `json:"oldValue,omitempty" db:"old_value"`
	NewValue  string `json:"newValue,omitempty" db:"new_value"`

	Description string `json:"description,omitempty" db:"description"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStatusChanged Action = "status_changed"
	ActionAssigned      Action = "assigned"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionStatusChanged, ActionAssigned:
		return true
	default:
		return false
	}
}

// Record is the read model for audit listings: the entry plus actor and
// enquiry context resolved via joins. Join fields are best-effort and may be
// empty when the referenced row no longer exists.
type Record struct {
	Entry

	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`

	// Populated only by the global listing.
	EnquiryCode string `json:"enquiryCode,omitempty"`
	ClientName  string `json:"clientName,omitempty"`
}
