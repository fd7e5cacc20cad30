package users

import "time"

// User is an internal account. Accounts arrive through the identity
// provider: the first login upserts the row keyed by OpenID, later logins
// refresh profile fields and the sign-in timestamp.
type User struct {
	ID     int64  `json:"id" db:"id"`
	OpenID string `json:"openId" db:"open_id"`

	Name  string `json:"name,omitempty" db:"name"`
	Email string `json:"email,omitempty" db:"email"`
	Role  string `json:"role" db:"role"`

	// Status gates sign-in: only active accounts get tokens issued.
	Status string `json:"status" db:"status"`

	NotificationMethod string `json:"notificationMethod,omitempty" db:"notification_method"`
	EmailNotifications bool   `json:"emailNotifications" db:"email_notifications"`

	LastSignedIn time.Time `json:"lastSignedIn" db:"last_signed_in"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

// ActivityStat is one user's contribution summary.
type ActivityStat struct {
	User             User  `json:"user"`
	EnquiriesCreated int64 `json:"enquiriesCreated"`
}
