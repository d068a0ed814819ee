// Package business provides the business account bounded context:
// registration, catalogue management, channel credential resolution, and the
// demo seed used before any real registration exists.
package business

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"replify_backend/internal/business/handler"
	"replify_backend/internal/business/repository"
	"replify_backend/internal/business/service"
	apphttp "replify_backend/internal/http"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
	"replify_backend/platform/validator"
)

// Module is the business bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the business module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "business"
}

// Service returns the service layer for external use (the inbound pipeline
// and the conversation module's credential resolution).
func (m *Module) Service() *service.Service {
	return m.service
}

// Seed ensures the demo business exists on startup.
func (m *Module) Seed(ctx context.Context, cfg config.SeedConfig, log *logger.Logger) error {
	return SeedDemoBusiness(ctx, m.repo, cfg, log)
}

// RegisterRoutes mounts business routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/business/register", m.handler.Register)
	ctx.Protected.GET("/business/me", m.handler.Me)
	ctx.Protected.POST("/business/:id/catalogue", m.handler.AddCatalogueItem)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
