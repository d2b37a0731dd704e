package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/isdelr/exercise-tracker/internal/services"
)

// ExerciseHandler handles HTTP requests for a user's exercise log.
type ExerciseHandler struct {
	users     services.UserServiceProvider
	exercises services.ExerciseServiceProvider
	activity  *services.ActivityRecorder
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(users services.UserServiceProvider, exercises services.ExerciseServiceProvider, activity *services.ActivityRecorder) *ExerciseHandler {
	return &ExerciseHandler{users: users, exercises: exercises, activity: activity}
}

// AddExercisePayload defines the structure for add-exercise requests.
// Duration accepts a JSON number or a numeric string.
type AddExercisePayload struct {
	Description string      `json:"description"`
	Duration    json.Number `json:"duration"`
	Date        string      `json:"date"`
}

func (p AddExercisePayload) exercise(userID string) (models.Exercise, error) {
	e := models.Exercise{UserID: userID, Description: p.Description}

	if d := strings.TrimSpace(p.Duration.String()); d != "" {
		duration, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return models.Exercise{}, &models.InvalidFieldError{Field: "duration", Value: d}
		}
		e.Duration = duration
	}

	if strings.TrimSpace(p.Date) == "" {
		e.Date = models.Today()
		return e, nil
	}
	date, err := models.ParseDate("date", p.Date)
	if err != nil {
		return models.Exercise{}, err
	}
	e.Date = date
	return e, nil
}

// Create handles adding an exercise to a user's log.
func (h *ExerciseHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload AddExercisePayload
	err := decodeBody(r, &payload, func(get func(string) string) {
		payload.Description = get("description")
		payload.Duration = json.Number(get("duration"))
		payload.Date = get("date")
	})
	if err != nil {
		writeError(w, err, id)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, err, id)
		return
	}

	exercise, err := payload.exercise(user.ID)
	if err != nil {
		writeError(w, err, id)
		return
	}

	stored, err := h.exercises.AddExercise(r.Context(), exercise)
	if err != nil {
		writeError(w, err, id)
		return
	}

	msg := fmt.Sprintf("Exercise '%s' added for user '%s'.", stored.Description, user.Username)
	h.activity.Record(r.Context(), models.EventExerciseCreate, msg, &user.ID)
	writeJSON(w, http.StatusOK, models.NewExerciseResponse(user, stored))
}

// parseLogQuery reads from, to and limit. An absent or non-positive limit
// leaves the default cap in place.
func parseLogQuery(r *http.Request, userID string) (models.LogQuery, error) {
	q := r.URL.Query()
	query := models.LogQuery{UserID: userID}

	var err error
	if query.From, err = models.ParseOptionalDate("from", q.Get("from")); err != nil {
		return models.LogQuery{}, err
	}
	if query.To, err = models.ParseOptionalDate("to", q.Get("to")); err != nil {
		return models.LogQuery{}, err
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(q.Get("limit"))); err == nil && limit > 0 {
		query.Limit = limit
	}
	return query, nil
}

// GetLog handles the request for a user's filtered exercise log.
func (h *ExerciseHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, err, id)
		return
	}

	query, err := parseLogQuery(r, user.ID)
	if err != nil {
		writeError(w, err, id)
		return
	}

	exercises, err := h.exercises.GetExerciseLog(r.Context(), query)
	if err != nil {
		writeError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, models.NewLogResponse(user, exercises))
}
