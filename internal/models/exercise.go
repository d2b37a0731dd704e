package models

import "time"

// DefaultLogLimit caps a log query when the caller does not supply a usable limit.
const DefaultLogLimit = 500

// Exercise is a single logged exercise entry owned by a user.
type Exercise struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"` // minutes
	Date        time.Time `json:"date"`
}

// LogQuery describes which of a user's exercises to return.
// From and To are inclusive calendar-day bounds; nil means unbounded.
type LogQuery struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// EffectiveLimit returns the cap to apply to the query.
func (q LogQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLogLimit
	}
	return q.Limit
}

// ExerciseResponse is returned after an exercise is added.
type ExerciseResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogEntry is one item of a user's exercise log.
type LogEntry struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogResponse is the shaped exercise log for a user.
type LogResponse struct {
	Username string     `json:"username"`
	Count    int        `json:"count"`
	ID       string     `json:"id"`
	Log      []LogEntry `json:"log"`
}

// NewExerciseResponse combines the owning user and the stored entry.
func NewExerciseResponse(user User, e Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          user.ID,
		Username:    user.Username,
		Description: e.Description,
		Duration:    e.Duration,
		Date:        FormatDate(e.Date),
	}
}

// NewLogResponse shapes the entries returned by a log query. Count always
// matches the number of entries in Log.
func NewLogResponse(user User, exercises []Exercise) LogResponse {
	log := make([]LogEntry, 0, len(exercises))
	for _, e := range exercises {
		log = append(log, LogEntry{
			Description: e.Description,
			Duration:    e.Duration,
			Date:        FormatDate(e.Date),
		})
	}
	return LogResponse{
		Username: user.Username,
		Count:    len(log),
		ID:       user.ID,
		Log:      log,
	}
}
