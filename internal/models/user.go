package models

// User represents a person whose exercises are tracked.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
