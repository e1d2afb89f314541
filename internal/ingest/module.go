package ingest

import (
	"salonbridge_backend/internal/events"
	apphttp "salonbridge_backend/internal/http"
	"salonbridge_backend/platform/httpkit"
	"salonbridge_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// Module is the ingest bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates and initializes the ingest module. The endpoints are
// unauthenticated by design (the integrations cannot carry credentials),
// so they sit behind a per-IP rate limit instead.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, eventBus, log)

	return &Module{
		handler: NewHandler(service),
		limiter: httpkit.NewIPRateLimiter(rate.Limit(10), 30, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ingest"
}

// RegisterRoutes mounts the ingest routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/ingest")
	group.Use(m.limiter.RateLimit())
	group.POST("/records-log", m.handler.HandleRecordsLog)
	group.POST("/webhook-log", m.handler.HandleWebhookLog)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
