package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DayLayout is the storage and primary input form of a calendar date.
	DayLayout = "2006-01-02"
	// DisplayLayout renders a date as e.g. "Mon May 01 2023".
	DisplayLayout = "Mon Jan 02 2006"
)

var inputLayouts = []string{
	DayLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// InvalidFieldError reports a request field that could not be coerced to its type.
type InvalidFieldError struct {
	Field string
	Value string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ParseDate parses a client-supplied date into a UTC calendar day. Timestamps
// carrying an offset are converted to UTC before the time of day is dropped.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Day(t.UTC()), nil
		}
	}
	return time.Time{}, &InvalidFieldError{Field: field, Value: value}
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return Day(time.Now().UTC())
}

// FormatDate renders a date in DisplayLayout.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}
