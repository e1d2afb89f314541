package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbridge_backend/internal/campaigns"
	"salonbridge_backend/internal/civil"
	"salonbridge_backend/internal/clients"
	clientsrepo "salonbridge_backend/internal/clients/repository"
	"salonbridge_backend/internal/events"
	apphttp "salonbridge_backend/internal/http"
	"salonbridge_backend/internal/http/router"
	"salonbridge_backend/internal/ingest"
	"salonbridge_backend/internal/reconcile"
	reconcilerepo "salonbridge_backend/internal/reconcile/repository"
	"salonbridge_backend/internal/scheduler"
	"salonbridge_backend/platform/config"
	"salonbridge_backend/platform/db"
	"salonbridge_backend/platform/logger"
	"salonbridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Redis is optional: without it, state resolution runs uncached and
	// per-item recompute debouncing is disabled (the sweep still runs).
	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	_, closeScheduler := initScheduler(cfg, eventBus, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Reconciliation Engine
	// ========================================================================

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

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	clientsModule, err := clients.NewModule(pool, reconciler, rdb, cfg.GetStateCacheTTL(), eventBus, loc, log, val)
	if err != nil {
		log.Error("failed to initialize clients module", "error", err)
		panic("failed to initialize clients module: " + err.Error())
	}

	campaignsModule, err := campaigns.NewModule(pool, eventBus, log, val)
	if err != nil {
		log.Error("failed to initialize campaigns module", "error", err)
		panic("failed to initialize campaigns module: " + err.Error())
	}

	ingestModule := ingest.NewModule(pool, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			ingestModule,
			clientsModule,
			campaignsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
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

// initRedis builds the shared redis client for the state cache. Returns
// nil when REDIS_URL is not configured.
func initRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; state cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; state cache disabled", "error", err)
		return nil
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	return redis.NewClient(opt)
}

// initScheduler builds the task queue client and subscribes it to ingest
// events so stored log items trigger debounced recomputes.
func initScheduler(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; debounced recompute disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}
	client.SubscribeIngest(bus, log)

	return client, func() {
		_ = client.Close()
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
