package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"enquiry-platform/internal/auth"
	"enquiry-platform/internal/rbac"
	"enquiry-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router assembles the gin engine: request logging, a public health probe
// and login, then the authenticated /v1 surface with an admin-gated users
// subtree.
func Router(h *Handlers, log *slog.Logger, healthCheck func(ctx context.Context) error) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	r.GET("/healthz", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/refresh", h.Refresh)

	authed := v1.Group("")
	authed.Use(auth.RequireAccessToken(h.Auth))

	enquiries := authed.Group("/enquiries")
	enquiries.GET("", h.ListEnquiries)
	enquiries.POST("", h.CreateEnquiry)
	enquiries.GET("/:id", h.GetEnquiry)
	enquiries.PATCH("/:id", h.UpdateEnquiry)
	enquiries.DELETE("/:id", h.DeleteEnquiry)
	enquiries.GET("/:id/audit", h.EnquiryAuditTrail)
	enquiries.GET("/:id/payment", h.GetPaymentByEnquiry)

	reports := authed.Group("/reports")
	reports.GET("/status-summary", h.StatusSummary)
	reports.GET("/kpi", h.KPIMetrics)
	reports.GET("/forecast", h.PipelineForecast)

	payments := authed.Group("/payments")
	payments.GET("", h.ListPayments)
	payments.POST("", h.CreatePayment)
	payments.GET("/:id", h.GetPayment)
	payments.PATCH("/:id", h.UpdatePayment)

	authed.GET("/audit-logs", h.ListAuditLogs)

	// The users service checks roles again; the middleware just rejects
	// early with a clean 403.
	usersGrp := authed.Group("/users")
	usersGrp.Use(rbac.RequireAdminRole())
	usersGrp.GET("", h.ListUsers)
	usersGrp.GET("/activity", h.ActivityStats)
	usersGrp.PATCH("/:id/role", h.UpdateUserRole)
	usersGrp.PATCH("/:id/status", h.UpdateUserStatus)

	return r
}
