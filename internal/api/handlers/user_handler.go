package handlers

import (
	"fmt"
	"net/http"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/isdelr/exercise-tracker/internal/services"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service  services.UserServiceProvider
	activity *services.ActivityRecorder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, activity *services.ActivityRecorder) *UserHandler {
	return &UserHandler{service: service, activity: activity}
}

// CreateUserPayload defines the structure for user creation requests.
type CreateUserPayload struct {
	Username string `json:"username"`
}

// GetAll handles the request to list every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles new user creation. Duplicate usernames are allowed.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserPayload
	err := decodeBody(r, &payload, func(get func(string) string) {
		payload.Username = get("username")
	})
	if err != nil {
		writeError(w, err, "")
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username)
	if err != nil {
		writeError(w, err, "")
		return
	}

	h.activity.Record(r.Context(), models.EventUserCreate, fmt.Sprintf("User '%s' created.", user.Username), &user.ID)
	writeJSON(w, http.StatusOK, user)
}
