// Package scoring provides the lead scoring bounded context module.
// It wires the scoring engine, a reasoning-service adapter, and the
// result store into HTTP endpoints.
package scoring

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "leadpulse_backend/internal/http"
	leadsrepo "leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/scheduler"
	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/internal/scoring/handler"
	"leadpulse_backend/internal/scoring/repository"
	"leadpulse_backend/internal/scoring/service"
	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/validator"
)

// Module is the scoring bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the scoring module. The reasoner and the optional
// scheduler client are injected by the composition root so the provider
// choice stays out of this package. A nil sched runs tenant-wide scoring
// inline instead of enqueueing it.
func NewModule(pool *pgxpool.Pool, reasoner engine.Reasoner, sched *scheduler.Client, cfg config.ScoringConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	loc, err := time.LoadLocation(cfg.GetReferenceTimezone())
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	eng := engine.New(reasoner, repo, log, engine.Options{
		Location:         loc,
		BatchConcurrency: cfg.GetBatchConcurrency(),
		FallbackEnabled:  cfg.IsFallbackScoringEnabled(),
	})
	svc := service.New(eng, leadsrepo.New(pool), log)

	// A typed nil must not reach the interface; the handler branches on it.
	var enqueue handler.BatchEnqueuer
	if sched != nil {
		enqueue = sched
	}

	return &Module{
		handler: handler.New(svc, enqueue, val, loc),
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scoring"
}

// Service returns the service layer for the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the result store for the analytics module.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/score", m.handler.Score)
	ctx.V1.POST("/score-batch", m.handler.ScoreBatch)
	ctx.V1.POST("/leads/:id/score", m.handler.ScoreStoredLead)
	ctx.V1.POST("/leads/score-all", m.handler.ScoreAllUnscored)
	ctx.V1.GET("/leads/:id/scoring", m.handler.GetScoring)
}
