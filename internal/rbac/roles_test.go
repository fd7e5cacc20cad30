package rbac

import "testing"

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(RoleAdmin); err != nil {
		t.Fatalf("admin should pass, got %v", err)
	}
	if err := RequireAdmin(RoleUser); err != ErrAdminRequired {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
	if err := RequireAdmin(""); err != ErrAdminRequired {
		t.Fatalf("expected ErrAdminRequired for empty role, got %v", err)
	}
}

func TestForbidSelfTarget(t *testing.T) {
	if err := ForbidSelfTarget(1, 2); err != nil {
		t.Fatalf("distinct ids should pass, got %v", err)
	}
	if err := ForbidSelfTarget(3, 3); err != ErrSelfTarget {
		t.Fatalf("expected ErrSelfTarget, got %v", err)
	}
}
