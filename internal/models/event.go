package models

import "time"

// Event represents a recorded activity in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "user.create", "exercise.create"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"` // Nil for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}

const (
	EventUserCreate     = "user.create"
	EventExerciseCreate = "exercise.create"
	EventRetentionPrune = "events.prune"
)
