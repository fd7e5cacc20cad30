package rbac

import (
	"net/http"

	"enquiry-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAdminRole allows only admin callers through.
// Route-level guard; the self-target rule still lives in the services because
// it depends on request payloads.
func RequireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}
		if !IsAdmin(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrAdminRequired.Error()})
			return
		}
		c.Next()
	}
}
