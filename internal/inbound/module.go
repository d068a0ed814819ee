package inbound

import (
	apphttp "replify_backend/internal/http"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// Module is the inbound webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the inbound module around an already-wired processor.
func NewModule(processor *Processor, cfg config.ChannelConfig, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(processor, cfg, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "inbound"
}

// RegisterRoutes mounts the webhook on the engine root. Meta calls it
// unauthenticated; the verify-token handshake is the only gate.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/webhook", m.handler.Verify)
	ctx.Engine.POST("/webhook", m.handler.Receive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
