package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salonbridge_backend/internal/clients/service"
	"salonbridge_backend/internal/clients/transport"
	"salonbridge_backend/platform/httpkit"
	"salonbridge_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidClientID  = "invalid client ID"
)

// Handler handles HTTP requests for client state and visit groups.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new clients handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the client routes.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:id/state", h.GetState)
	group.GET("/:id/visit-groups", h.GetVisitGroups)
	group.PUT("/:id/state", h.SetStoredState)
}

// GetState returns the client's displayed state.
// GET /api/v1/clients/:id/state
func (h *Handler) GetState(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	result, err := h.svc.DisplayedState(c.Request.Context(), clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetVisitGroups returns the client's resolved visit groups, newest first.
// GET /api/v1/clients/:id/visit-groups
func (h *Handler) GetVisitGroups(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	result, err := h.svc.VisitGroups(c.Request.Context(), clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetStoredState updates the free-text fallback state.
// PUT /api/v1/clients/:id/state
func (h *Handler) SetStoredState(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	var req transport.SetStoredStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetStoredState(c.Request.Context(), clientID, req.State); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

func parseClientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidClientID, nil)
		return 0, false
	}
	return id, true
}
