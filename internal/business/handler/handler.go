// Package handler exposes the business account endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"replify_backend/internal/business/service"
	"replify_backend/internal/business/transport"
	"replify_backend/platform/httpkit"
	"replify_backend/platform/validator"
)

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidBusinessID = "invalid business ID"
)

// Handler handles HTTP requests for business accounts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new business handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Register creates a business account with an optional starting catalogue.
// POST /api/v1/business/register
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// Me returns the business profile owned by the authenticated user.
// GET /api/v1/business/me
func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.GetMine(c.Request.Context(), identity.UserID().String())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// AddCatalogueItem appends one catalogue entry to a business.
// POST /api/v1/business/:id/catalogue
func (h *Handler) AddCatalogueItem(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBusinessID)
		return
	}

	var req transport.CatalogueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	resp, err := h.svc.AddCatalogueItem(c.Request.Context(), businessID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}
