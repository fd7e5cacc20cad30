package rbac

import "errors"

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrAdminRequired is returned when a privileged operation is attempted
	// by a non-admin actor.
	ErrAdminRequired = errors.New("Admin access required")

	// ErrSelfTarget is returned when an actor targets their own account
	// through a privileged operation.
	ErrSelfTarget = errors.New("cannot target own account")
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// RequireAdmin gates privileged operations on the actor role.
func RequireAdmin(actorRole string) error {
	if !IsAdmin(actorRole) {
		return ErrAdminRequired
	}
	return nil
}

// ForbidSelfTarget rejects privileged operations where the actor is the target.
// Enforced here rather than in the presentation layer so it can never be skipped.
func ForbidSelfTarget(actorID, targetID int64) error {
	if actorID == targetID {
		return ErrSelfTarget
	}
	return nil
}
