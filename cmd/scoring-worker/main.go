// The scoring worker consumes queued batch scoring tasks so large
// tenant-wide runs happen off the request path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadpulse_backend/internal/scheduler"
	"leadpulse_backend/internal/scoring"
	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/internal/scoring/reasoner"
	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/db"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scoring worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	rsn, err := newReasoner(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize reasoning client", "error", err)
		panic("failed to initialize reasoning client: " + err.Error())
	}

	scoringModule, err := scoring.NewModule(pool, rsn, nil, cfg, validator.New(), log)
	if err != nil {
		log.Error("failed to initialize scoring module", "error", err)
		panic("failed to initialize scoring module: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, scoringModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scoring worker stopped")
}

func newReasoner(ctx context.Context, cfg *config.Config) (engine.Reasoner, error) {
	switch cfg.GetReasoningProvider() {
	case "gemini":
		return reasoner.NewGemini(ctx, cfg)
	case "openai":
		return reasoner.NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", cfg.GetReasoningProvider())
	}
}
