package services

import "errors"

// ErrUserNotFound is returned when a user ID does not resolve to a stored user.
var ErrUserNotFound = errors.New("user not found")
