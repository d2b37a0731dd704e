package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/isdelr/exercise-tracker/internal/services"
	"github.com/rs/zerolog/log"
)

var errInvalidBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps an error to its response. Store failures are logged and
// reported without detail.
func writeError(w http.ResponseWriter, err error, userID string) {
	var fieldErr *models.InvalidFieldError
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		log.Warn().Err(err).Str("user_id", userID).Msg("User not found")
		http.Error(w, "User not found", http.StatusNotFound)
	case errors.As(err, &fieldErr):
		http.Error(w, "Invalid "+fieldErr.Field, http.StatusBadRequest)
	case errors.Is(err, errInvalidBody):
		http.Error(w, "Invalid request body", http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("user_id", userID).Msg("Request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// decodeBody fills dst from a JSON body, or from form fields for any other
// content type. fromForm copies the parsed form into dst.
func decodeBody(r *http.Request, dst interface{}, fromForm func(get func(string) string)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errInvalidBody
		}
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return errInvalidBody
		}
	default:
		if err := r.ParseForm(); err != nil {
			return errInvalidBody
		}
	}
	fromForm(r.PostFormValue)
	return nil
}
