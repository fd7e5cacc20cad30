package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"enquiry-platform/internal/audit"
	"enquiry-platform/internal/auth"
	"enquiry-platform/internal/enquiry"
	"enquiry-platform/internal/payment"
	"enquiry-platform/internal/rbac"
	"enquiry-platform/internal/reporting"
	"enquiry-platform/internal/users"
	"enquiry-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers wires the HTTP surface to the domain services.
type Handlers struct {
	Auth      *auth.Manager
	Users     *users.Service
	Enquiries *enquiry.Service
	Payments  *payment.Service
	Reports   *reporting.Service
	Audit     *audit.Service
}

// respondError maps domain sentinels onto HTTP statuses. Unknown errors are
// logged and surface as a bare 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, enquiry.ErrValidation),
		errors.Is(err, payment.ErrValidation),
		errors.Is(err, users.ErrValidation),
		errors.Is(err, payment.ErrNotConverted),
		errors.Is(err, audit.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, enquiry.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rbac.ErrAdminRequired),
		errors.Is(err, rbac.ErrSelfTarget):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, enquiry.ErrConflict),
		errors.Is(err, payment.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, enquiry.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		logger.FromGin(c).Error("unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func identity(c *gin.Context) (int64, string, bool) {
	ctx := c.Request.Context()
	id, err := auth.UserID(ctx)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, "", false
	}
	role, err := auth.Role(ctx)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, "", false
	}
	return id, role, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- auth ---

type loginRequest struct {
	OpenID string `json:"openId" binding:"required"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         users.User `json:"user"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "openId is required"})
		return
	}

	u, err := h.Users.SignIn(c.Request.Context(), req.OpenID, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if u.Status != users.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID, u.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         u,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// Role and status are re-read so revocations take effect at refresh.
	u, err := h.Users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if u.Status != users.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID, u.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         u,
	})
}

// --- enquiries ---

func (h *Handlers) ListEnquiries(c *gin.Context) {
	list, err := h.Enquiries.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enquiries": list})
}

func (h *Handlers) GetEnquiry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.Enquiries.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handlers) CreateEnquiry(c *gin.Context) {
	actorID, _, ok := identity(c)
	if !ok {
		return
	}

	var req enquiryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in, err := req.toEnquiry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Enquiries.Create(c.Request.Context(), in, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handlers) UpdateEnquiry(c *gin.Context) {
	actorID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req enquiryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Enquiries.Update(c.Request.Context(), id, patch, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) DeleteEnquiry(c *gin.Context) {
	actorID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Enquiries.Delete(c.Request.Context(), id, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// --- reports ---

func (h *Handlers) StatusSummary(c *gin.Context) {
	out, err := h.Reports.StatusSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": out})
}

func (h *Handlers) KPIMetrics(c *gin.Context) {
	out, err := h.Reports.KPIMetrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) PipelineForecast(c *gin.Context) {
	out, err := h.Reports.PipelineForecast(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": out})
}

// --- payments ---

func (h *Handlers) CreatePayment(c *gin.Context) {
	var req paymentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in, err := req.toPayment()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Payments.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handlers) ListPayments(c *gin.Context) {
	list, err := h.Payments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func (h *Handlers) GetPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.Payments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) GetPaymentByEnquiry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.Payments.GetByEnquiry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) UpdatePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req paymentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Payments.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- users ---

func (h *Handlers) ListUsers(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Users.List(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (h *Handlers) ActivityStats(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	stats, err := h.Users.ActivityStats(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handlers) UpdateUserRole(c *gin.Context) {
	actorID, actorRole, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	u, err := h.Users.UpdateRole(c.Request.Context(), actorID, actorRole, id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	actorID, actorRole, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	u, err := h.Users.UpdateStatus(c.Request.Context(), actorID, actorRole, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// --- audit ---

func (h *Handlers) EnquiryAuditTrail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	// 404 for a missing enquiry, not an empty trail.
	if _, err := h.Enquiries.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recs, err := h.Audit.ListByEnquiry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": recs})
}

func (h *Handlers) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	recs, err := h.Audit.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": recs})
}
