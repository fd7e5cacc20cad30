package users

import (
	"context"
	"fmt"
	"time"

	"enquiry-platform/internal/rbac"
)

// Service manages user accounts. Privileged operations check the actor's
// role and target before touching the store, so a denied call leaves no
// trace.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// SignIn upserts the account for an identity-provider login and stamps the
// sign-in time. New accounts start as active regular users.
func (s *Service) SignIn(ctx context.Context, openID, name, email string) (User, error) {
	if openID == "" {
		return User{}, fmt.Errorf("%w: openId required", ErrValidation)
	}
	now := s.clock().UTC()
	return s.store.Upsert(ctx, User{
		OpenID:       openID,
		Name:         name,
		Email:        email,
		Role:         rbac.RoleUser,
		Status:       StatusActive,
		LastSignedIn: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: id required", ErrValidation)
	}
	return s.store.Get(ctx, id)
}

// List returns all users. Admin only.
func (s *Service) List(ctx context.Context, actorRole string) ([]User, error) {
	if err := rbac.RequireAdmin(actorRole); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// UpdateRole changes a user's role. Admin only; admins cannot change their
// own role.
func (s *Service) UpdateRole(ctx context.Context, actorID int64, actorRole string, targetID int64, role string) (User, error) {
	if err := rbac.RequireAdmin(actorRole); err != nil {
		return User{}, err
	}
	if err := rbac.ForbidSelfTarget(actorID, targetID); err != nil {
		return User{}, err
	}
	if !rbac.IsValidRole(role) {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.store.UpdateRole(ctx, targetID, role)
}

// UpdateStatus moves an account between active, inactive and suspended.
// Admin only; admins cannot change their own status.
func (s *Service) UpdateStatus(ctx context.Context, actorID int64, actorRole string, targetID int64, status string) (User, error) {
	if err := rbac.RequireAdmin(actorRole); err != nil {
		return User{}, err
	}
	if err := rbac.ForbidSelfTarget(actorID, targetID); err != nil {
		return User{}, err
	}
	if !ValidStatus(status) {
		return User{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.store.UpdateStatus(ctx, targetID, status)
}

// ActivityStats joins the user list with per-user enquiry creation counts.
// Admin only.
func (s *Service) ActivityStats(ctx context.Context, actorRole string) ([]ActivityStat, error) {
	if err := rbac.RequireAdmin(actorRole); err != nil {
		return nil, err
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.EnquiryCounts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ActivityStat, 0, len(all))
	for _, u := range all {
		out = append(out, ActivityStat{User: u, EnquiriesCreated: counts[u.ID]})
	}
	return out, nil
}
