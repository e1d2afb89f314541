package scheduler

import (
	"context"
	"time"

	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/logger"
)

const defaultSweepInterval = 10 * time.Minute

// Sweep periodically recomputes derived facts for every recently active
// client, catching anything the per-item debounce missed (late log
// replication, day boundary crossings).
type Sweep struct {
	reconciler *reconcile.Reconciler
	log        *logger.Logger
	interval   time.Duration
}

func NewSweep(reconciler *reconcile.Reconciler, log *logger.Logger, interval time.Duration) *Sweep {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweep{
		reconciler: reconciler,
		log:        log,
		interval:   interval,
	}
}

func (s *Sweep) Run(ctx context.Context) {
	if s == nil || s.reconciler == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweep) sweep(ctx context.Context) {
	result, err := s.reconciler.RecomputeAll(ctx)
	if err != nil {
		s.log.Warn("reconcile sweep failed", "error", err)
		return
	}

	s.log.Info("reconcile sweep finished",
		"clients", result.Clients,
		"failed", result.Failed,
		"dropped_items", result.Dropped,
	)
}
