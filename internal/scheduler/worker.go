package scheduler

import (
	"context"
	"fmt"

	"bd_pipeline_backend/platform/config"
	"bd_pipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// HandoverSyncer creates the handover sheet of a won lead. It must be
// idempotent; tasks are retried.
type HandoverSyncer interface {
	SyncWonLead(ctx context.Context, leadID string) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	handover HandoverSyncer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, handover HandoverSyncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		handover: handover,
		log:      log,
	}
	w.mux.HandleFunc(TaskHandoverSync, w.handleHandoverSync)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return
	}

	<-ctx.Done()
	w.server.Shutdown()
}

func (w *Worker) handleHandoverSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseHandoverSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.LeadID == "" {
		return fmt.Errorf("%w: empty lead id", asynq.SkipRetry)
	}

	if err := w.handover.SyncWonLead(ctx, payload.LeadID); err != nil {
		w.log.Error("handover sync failed", "leadId", payload.LeadID, "error", err)
		return err
	}
	return nil
}
