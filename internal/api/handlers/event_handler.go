package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/exercise-tracker/internal/services"
)

// EventHandler handles HTTP requests related to recorded activity.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity/events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
