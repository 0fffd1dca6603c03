// Package analytics provides the reporting bounded context module.
package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadpulse_backend/internal/analytics/repository"
	"leadpulse_backend/internal/analytics/service"
	apphttp "leadpulse_backend/internal/http"
	"leadpulse_backend/platform/httpkit"
)

// Module is the analytics bounded context implementing http.Module.
type Module struct {
	service *service.Service
}

// NewModule creates the analytics module. Scoring statistics come from
// the scoring module's repository.
func NewModule(pool *pgxpool.Pool, scoring service.ScoringStats) *Module {
	return &Module{service: service.New(repository.New(pool), scoring)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/analytics", m.overview)
}

func (m *Module) overview(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	overview, err := m.service.Overview(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, overview)
}
