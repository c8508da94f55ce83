package api

import (
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventHandler serves the audit log read path
type EventHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(services *service.Services, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		services: services,
		log:      log.With().Str("handler", "event").Logger(),
	}
}

// List handles GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.services.Event.List(c.Request.Context(),
		queryInt(c, "limit", 50), queryInt(c, "page", 0))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list events")
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"events": events})
}
