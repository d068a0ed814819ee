package inbound

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// Handler exposes the Meta webhook endpoints.
type Handler struct {
	processor *Processor
	cfg       config.ChannelConfig
	log       *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(processor *Processor, cfg config.ChannelConfig, log *logger.Logger) *Handler {
	return &Handler{processor: processor, cfg: cfg, log: log}
}

// Verify answers Meta's webhook verification handshake.
// GET /webhook
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.cfg.GetWebhookVerifyToken() && token != "" {
		h.log.Info("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.log.Warn("webhook verification failed")
	c.String(http.StatusForbidden, "Forbidden")
}

// Receive ingests webhook notifications. It always acknowledges with 200:
// a non-2xx makes Meta retry the same event into a pipeline that already
// failed on it.
// POST /webhook
func (h *Handler) Receive(c *gin.Context) {
	var notification Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.String(http.StatusOK, "ok")
		return
	}

	if err := h.processor.Process(c.Request.Context(), notification); err != nil {
		h.log.Error("webhook processing failed", "error", err.Error())
	}

	c.String(http.StatusOK, "ok")
}
