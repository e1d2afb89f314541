package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbridge_backend/internal/civil"
	clientsrepo "salonbridge_backend/internal/clients/repository"
	"salonbridge_backend/internal/events"
	"salonbridge_backend/internal/reconcile"
	reconcilerepo "salonbridge_backend/internal/reconcile/repository"
	"salonbridge_backend/internal/scheduler"
	"salonbridge_backend/platform/config"
	"salonbridge_backend/platform/db"
	"salonbridge_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	loc := civil.Location(cfg.GetBusinessUTCOffset())
	admins := reconcile.NewAdminMatcher(cfg.GetAdminStaffNames())
	reconciler := reconcile.New(
		reconcilerepo.New(pool),
		clientsrepo.New(pool),
		admins,
		loc,
		cfg.GetLogWindow(),
		eventBus,
		log,
	)

	// Periodic full-window sweep, independent of the task queue.
	sweep := scheduler.NewSweep(reconciler, log, cfg.GetReconcileInterval())
	go sweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, reconciler, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
