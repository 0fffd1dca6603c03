package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadpulse_backend/internal/analytics"
	"leadpulse_backend/internal/engage"
	apphttp "leadpulse_backend/internal/http"
	"leadpulse_backend/internal/http/router"
	"leadpulse_backend/internal/leads"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	val := validator.New()

	rsn, err := newReasoner(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize reasoning client", "error", err)
		panic("failed to initialize reasoning client: " + err.Error())
	}
	log.Info("reasoning client initialized", "provider", cfg.GetReasoningProvider(), "model", cfg.GetReasoningModel())

	var sched *scheduler.Client
	if cfg.GetRedisURL() != "" {
		sched, err = scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer sched.Close()
		log.Info("scheduler client initialized", "queue", cfg.GetAsynqQueueName())
	}

	scoringModule, err := scoring.NewModule(pool, rsn, sched, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize scoring module", "error", err)
		panic("failed to initialize scoring module: " + err.Error())
	}
	leadsModule := leads.NewModule(pool, val, log)
	engageModule := engage.NewModule(pool, cfg, val, log)
	analyticsModule := analytics.NewModule(pool, scoringModule.Repository())

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			leadsModule,
			scoringModule,
			engageModule,
			analyticsModule,
		},
	}

	engineHTTP := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engineHTTP.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newReasoner selects the reasoning-service adapter by configured provider.
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

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
