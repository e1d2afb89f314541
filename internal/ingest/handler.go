package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/httpkit"
)

const errUnreadableBody = "unable to read request body"

// Handler handles inbound integration webhooks. Bodies are taken raw:
// both integrations have shipped double-encoded JSON and wrapped
// envelopes at various points, so no binding happens at this layer.
type Handler struct {
	service *Service
}

// NewHandler creates a new ingest handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleRecordsLog captures a booking-system record change notification.
// POST /api/v1/ingest/records-log
func (h *Handler) HandleRecordsLog(c *gin.Context) {
	h.capture(c, reconcile.SourceRecordsLog)
}

// HandleWebhookLog captures a raw messaging-side webhook delivery.
// POST /api/v1/ingest/webhook-log
func (h *Handler) HandleWebhookLog(c *gin.Context) {
	h.capture(c, reconcile.SourceWebhookLog)
}

func (h *Handler) capture(c *gin.Context, source reconcile.Source) {
	payload, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errUnreadableBody, nil)
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), source, payload)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusAccepted, result)
}
