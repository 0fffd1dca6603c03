package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	scoringsvc "leadpulse_backend/internal/scoring/service"
	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/logger"
)

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	scoring *scoringsvc.Service
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, scoring *scoringsvc.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		scoring: scoring,
		log:     log,
	}
	mux.HandleFunc(TaskScoringBatch, w.handleScoringBatch)

	return w, nil
}

func (w *Worker) handleScoringBatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoringBatchPayload(task)
	if err != nil {
		return err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	batch, err := w.scoring.ScoreAllUnscored(ctx, tenantID)
	if err != nil {
		return err
	}
	w.log.Info("scoring batch finished",
		"tenant_id", tenantID.String(),
		"scored", len(batch.Results),
		"failed", len(batch.Errors),
		"skipped", batch.Skipped,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
