// Package campaigns provides the campaign routing bounded context module.
package campaigns

import (
	"salonbridge_backend/internal/campaigns/handler"
	"salonbridge_backend/internal/campaigns/repository"
	"salonbridge_backend/internal/campaigns/service"
	"salonbridge_backend/internal/events"
	apphttp "salonbridge_backend/internal/http"
	"salonbridge_backend/platform/logger"
	"salonbridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the campaigns module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger, val *validator.Validator) (*Module, error) {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/campaigns"))
}
