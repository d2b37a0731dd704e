package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/exercise-tracker/internal/models"
)

// ExerciseServiceProvider defines the interface for exercise log services.
type ExerciseServiceProvider interface {
	AddExercise(ctx context.Context, exercise models.Exercise) (models.Exercise, error)
	GetExerciseLog(ctx context.Context, query models.LogQuery) ([]models.Exercise, error)
}

// ExerciseService provides exercise storage backed by SQLite.
type ExerciseService struct {
	db *sql.DB
}

// NewExerciseService creates a new ExerciseService.
func NewExerciseService(db *sql.DB) *ExerciseService {
	return &ExerciseService{db: db}
}

// AddExercise stores a new entry. The caller has already resolved the owning user.
func (s *ExerciseService) AddExercise(ctx context.Context, exercise models.Exercise) (models.Exercise, error) {
	exercise.ID = uuid.New().String()
	exercise.Date = models.Day(exercise.Date)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exercises (id, user_id, description, duration, date) VALUES (?, ?, ?, ?, ?)",
		exercise.ID, exercise.UserID, exercise.Description, exercise.Duration, exercise.Date.Format(models.DayLayout),
	)
	if err != nil {
		return models.Exercise{}, err
	}
	return exercise, nil
}

// GetExerciseLog returns the user's entries within the query's date bounds,
// in insertion order, capped at the query's effective limit.
func (s *ExerciseService) GetExerciseLog(ctx context.Context, query models.LogQuery) ([]models.Exercise, error) {
	stmt, args := buildLogQuery(query)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := []models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		var date string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &date); err != nil {
			return nil, err
		}
		if e.Date, err = time.Parse(models.DayLayout, date); err != nil {
			return nil, fmt.Errorf("exercise %s has malformed date %q: %w", e.ID, date, err)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func buildLogQuery(query models.LogQuery) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT id, user_id, description, duration, date FROM exercises WHERE user_id = ?")
	args := []interface{}{query.UserID}

	if query.From != nil {
		sb.WriteString(" AND date >= ?")
		args = append(args, query.From.Format(models.DayLayout))
	}
	if query.To != nil {
		sb.WriteString(" AND date <= ?")
		args = append(args, query.To.Format(models.DayLayout))
	}

	sb.WriteString(" ORDER BY rowid LIMIT ?")
	args = append(args, query.EffectiveLimit())
	return sb.String(), args
}
