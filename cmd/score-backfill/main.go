// score-backfill enqueues a tenant-wide scoring run for every tenant
// passed on the command line, or runs it inline with -direct when no
// queue is available.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

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
	direct := flag.Bool("direct", false, "score inline instead of enqueueing")
	flag.Parse()

	tenants := flag.Args()
	if len(tenants) == 0 {
		fmt.Fprintln(os.Stderr, "usage: score-backfill [-direct] <tenant-id> [<tenant-id>...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tenantIDs := make([]uuid.UUID, 0, len(tenants))
	for _, raw := range tenants {
		id, err := uuid.Parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid tenant ID %q\n", raw)
			os.Exit(2)
		}
		tenantIDs = append(tenantIDs, id)
	}

	if *direct {
		runDirect(ctx, cfg, log, tenantIDs)
		return
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	for _, tenantID := range tenantIDs {
		payload := scheduler.ScoringBatchPayload{TenantID: tenantID.String()}
		if err := client.EnqueueScoringBatch(ctx, payload, time.Time{}); err != nil {
			log.Error("failed to enqueue scoring batch", "tenant_id", tenantID.String(), "error", err)
			os.Exit(1)
		}
		log.Info("scoring batch enqueued", "tenant_id", tenantID.String())
	}
}

func runDirect(ctx context.Context, cfg *config.Config, log *logger.Logger, tenantIDs []uuid.UUID) {
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

	for _, tenantID := range tenantIDs {
		batch, err := scoringModule.Service().ScoreAllUnscored(ctx, tenantID)
		if err != nil {
			log.Error("scoring batch failed", "tenant_id", tenantID.String(), "error", err)
			os.Exit(1)
		}
		log.Info("scoring batch finished",
			"tenant_id", tenantID.String(),
			"scored", len(batch.Results),
			"failed", len(batch.Errors),
			"skipped", batch.Skipped,
		)
	}
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
