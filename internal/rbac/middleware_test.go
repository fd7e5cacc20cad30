package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"enquiry-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func serveWithRole(t *testing.T, role string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), 1, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}, RequireAdminRole(), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAdminRole_AdminAllowed(t *testing.T) {
	if code := serveWithRole(t, RoleAdmin); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAdminRole_UserDenied(t *testing.T) {
	if code := serveWithRole(t, RoleUser); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAdminRole_MissingRoleUnauthorized(t *testing.T) {
	if code := serveWithRole(t, ""); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}
