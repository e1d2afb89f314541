package scheduler

import (
	"context"
	"fmt"

	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/config"
	"salonbridge_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reconciler *reconcile.Reconciler
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reconciler *reconcile.Reconciler, log *logger.Logger) (*Worker, error) {
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

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		reconciler: reconciler,
		log:        log,
	}

	mux.HandleFunc(TaskReconcileClient, w.handleReconcileClient)
	mux.HandleFunc(TaskReconcileSweep, w.handleReconcileSweep)

	return w, nil
}

func (w *Worker) handleReconcileClient(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcileClientPayload(task)
	if err != nil {
		return err
	}
	if payload.ClientID <= 0 {
		return nil
	}
	return w.reconciler.RecomputeClient(ctx, payload.ClientID)
}

func (w *Worker) handleReconcileSweep(ctx context.Context, task *asynq.Task) error {
	result, err := w.reconciler.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	w.log.Info("reconcile sweep finished",
		"clients", result.Clients,
		"failed", result.Failed,
		"dropped_items", result.Dropped,
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
