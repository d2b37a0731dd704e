package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/exercise-tracker/internal/models"
)

// eventTimeLayout is fixed-width so stored timestamps compare correctly as text.
const eventTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *string) (models.Event, error)
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventService provides event storage backed by SQLite.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) (models.Event, error) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt.Format(eventTimeLayout),
	)
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var userID sql.NullString
		var createdAt string
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &userID, &createdAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			event.UserID = &userID.String
		}
		if event.CreatedAt, err = time.Parse(eventTimeLayout, createdAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes events created before cutoff and reports how many were removed.
func (s *EventService) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff.UTC().Format(eventTimeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
