// Package conversation provides the conversation lifecycle bounded context:
// the status state machine, message append semantics, and the dashboard
// endpoints operating on them.
package conversation

import (
	"replify_backend/internal/conversation/handler"
	"replify_backend/internal/conversation/repository"
	"replify_backend/internal/conversation/service"
	"replify_backend/internal/events"
	apphttp "replify_backend/internal/http"
	"replify_backend/platform/logger"
	"replify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the conversation module with all its
// dependencies.
func NewModule(
	pool *pgxpool.Pool,
	creds service.ChannelCredentials,
	out service.Deliverer,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, creds, out, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service returns the service layer for external use (the inbound pipeline).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts conversation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/conversations", m.handler.List)
	ctx.Protected.GET("/conversations/:id/messages", m.handler.ListMessages)
	ctx.Protected.POST("/conversations/:id/reply", m.handler.Reply)
	ctx.Protected.POST("/conversations/:id/takeover", m.handler.TakeOver)
	ctx.Protected.POST("/conversations/:id/resolve", m.handler.Resolve)
	ctx.Protected.GET("/stats", m.handler.Stats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
