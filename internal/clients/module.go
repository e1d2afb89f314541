// Package clients provides the client state bounded context module.
package clients

import (
	"context"
	"time"

	"salonbridge_backend/internal/clients/cache"
	"salonbridge_backend/internal/clients/handler"
	"salonbridge_backend/internal/clients/repository"
	"salonbridge_backend/internal/clients/service"
	"salonbridge_backend/internal/events"
	apphttp "salonbridge_backend/internal/http"
	"salonbridge_backend/platform/logger"
	"salonbridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the clients module. groups is the
// reconciliation engine's visit-group source; rdb may be nil, in which
// case state resolution simply runs uncached.
func NewModule(pool *pgxpool.Pool, groups service.GroupSource, rdb *redis.Client, cacheTTL time.Duration, eventBus events.Bus, loc *time.Location, log *logger.Logger, val *validator.Validator) (*Module, error) {
	repo := repository.New(pool)
	stateCache := cache.New(rdb, cacheTTL)
	svc := service.New(repo, groups, stateCache, loc, log)

	// Reconciliation passes invalidate the cached resolution.
	eventBus.Subscribe(events.ClientFactsRecomputed{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ClientFactsRecomputed)
		if !ok {
			return nil
		}
		svc.InvalidateState(ctx, e.ClientID)
		return nil
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service exposes the clients service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/clients"))
}
