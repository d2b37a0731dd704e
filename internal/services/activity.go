package services

import (
	"context"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/rs/zerolog/log"
)

// EventPublisher fans recorded events out to live listeners.
type EventPublisher interface {
	PublishEvent(event models.Event)
}

// ActivityRecorder stores activity events and publishes them. Recording is
// best-effort: failures are logged and never returned to the caller.
type ActivityRecorder struct {
	events    EventServiceProvider
	publisher EventPublisher
}

// NewActivityRecorder creates a new ActivityRecorder. publisher may be nil.
func NewActivityRecorder(events EventServiceProvider, publisher EventPublisher) *ActivityRecorder {
	return &ActivityRecorder{events: events, publisher: publisher}
}

// Record stores an info-level event and publishes it.
func (a *ActivityRecorder) Record(ctx context.Context, eventType, message string, userID *string) {
	event, err := a.events.CreateEvent(ctx, eventType, "info", message, userID)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
		return
	}
	if a.publisher != nil {
		a.publisher.PublishEvent(event)
	}
}
