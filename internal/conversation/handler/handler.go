// Package handler exposes the conversation dashboard endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"replify_backend/internal/conversation/service"
	"replify_backend/internal/conversation/transport"
	"replify_backend/platform/httpkit"
	"replify_backend/platform/validator"
)

const (
	msgInvalidRequest        = "invalid request"
	msgValidationFailed      = "validation failed"
	msgInvalidConversationID = "invalid conversation ID"
	msgInvalidBusinessID     = "invalid business ID"
)

// Handler handles HTTP requests for conversations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new conversation handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns conversations for a business, optionally filtered by status.
// GET /api/v1/conversations?business_id=...&status=...
func (h *Handler) List(c *gin.Context) {
	businessID, ok := h.businessIDParam(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), businessID, c.Query("status"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rows)
}

// ListMessages returns all messages for a conversation ordered by created_at.
// GET /api/v1/conversations/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := h.conversationIDParam(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListMessages(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rows)
}

// Reply persists a human-agent reply and sends it to the customer.
// POST /api/v1/conversations/:id/reply
func (h *Handler) Reply(c *gin.Context) {
	id, ok := h.conversationIDParam(c)
	if !ok {
		return
	}

	var req transport.AgentReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	_, err := h.svc.RecordAgentReply(c.Request.Context(), id, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StatusUpdateResponse{Status: "sent"})
}

// TakeOver disables AI and flags the conversation for a human agent.
// POST /api/v1/conversations/:id/takeover
func (h *Handler) TakeOver(c *gin.Context) {
	id, ok := h.conversationIDParam(c)
	if !ok {
		return
	}

	err := h.svc.TakeOver(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StatusUpdateResponse{Status: "takeover_complete"})
}

// Resolve marks a conversation as resolved and disables AI handling.
// POST /api/v1/conversations/:id/resolve
func (h *Handler) Resolve(c *gin.Context) {
	id, ok := h.conversationIDParam(c)
	if !ok {
		return
	}

	err := h.svc.Resolve(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StatusUpdateResponse{Status: "resolved"})
}

// Stats returns conversation counts grouped by status for a business.
// GET /api/v1/stats?business_id=...
func (h *Handler) Stats(c *gin.Context) {
	businessID, ok := h.businessIDParam(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), businessID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func (h *Handler) conversationIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidConversationID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) businessIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query("business_id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBusinessID)
		return uuid.Nil, false
	}
	return id, true
}
