package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: no user with the given id or OpenID.
	ErrNotFound = errors.New("users: not found")
	// ErrValidation: missing or malformed required input.
	ErrValidation = errors.New("users: invalid input")
)

// Store is the persistence contract for user accounts.
type Store interface {
	// List returns all users, most recently signed in first.
	List(ctx context.Context) ([]User, error)

	Get(ctx context.Context, id int64) (User, error)

	// Upsert inserts or refreshes the row keyed by u.OpenID and returns the
	// stored record. Role and status of an existing row are preserved.
	Upsert(ctx context.Context, u User) (User, error)

	UpdateRole(ctx context.Context, id int64, role string) (User, error)

	UpdateStatus(ctx context.Context, id int64, status string) (User, error)

	// EnquiryCounts returns enquiries created per user id.
	EnquiryCounts(ctx context.Context) (map[int64]int64, error)
}
