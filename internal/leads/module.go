// Package leads provides the lead management bounded context module.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "leadpulse_backend/internal/http"
	"leadpulse_backend/internal/leads/handler"
	"leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/leads/service"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/validator"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/leads", m.handler.Create)
	ctx.V1.GET("/leads", m.handler.List)
	ctx.V1.GET("/leads/:id", m.handler.Get)
	ctx.V1.PATCH("/leads/:id", m.handler.Update)
	ctx.V1.DELETE("/leads/:id", m.handler.Delete)
}
