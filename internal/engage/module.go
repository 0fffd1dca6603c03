// Package engage provides the WhatsApp outreach bounded context module.
package engage

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadpulse_backend/internal/engage/handler"
	"leadpulse_backend/internal/engage/repository"
	"leadpulse_backend/internal/engage/service"
	"leadpulse_backend/internal/engage/whatsapp"
	apphttp "leadpulse_backend/internal/http"
	leadsrepo "leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/validator"
)

// Module is the engage bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the engage module. With no gateway configured the
// send endpoint answers 502 but the rest of the app is unaffected.
func NewModule(pool *pgxpool.Pool, cfg config.WhatsAppConfig, val *validator.Validator, log *logger.Logger) *Module {
	client := whatsapp.NewClient(cfg, log)
	svc := service.New(client, repository.New(pool), leadsrepo.New(pool), log)

	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "engage"
}

// RegisterRoutes mounts outreach routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/whatsapp/send", m.handler.Send)
	ctx.V1.GET("/leads/:id/messages", m.handler.History)
}
