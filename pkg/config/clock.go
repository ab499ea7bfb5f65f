package config

import (
	"fmt"
	"strconv"
	"time"
)

// ValidationError reports a configuration value that cannot be used.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseClock reads a 4-digit 24-hour time of day such as "0800".
func ParseClock(field, s string) (hour, minute int, err error) {
	if len(s) != 4 {
		return 0, 0, &ValidationError{Field: field, Value: s, Reason: "time must be a 4-digit string in 24-hour format (e.g. 0800)"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, 0, &ValidationError{Field: field, Value: s, Reason: "time must be a 4-digit string in 24-hour format (e.g. 0800)"}
		}
	}

	hour, _ = strconv.Atoi(s[:2])
	minute, _ = strconv.Atoi(s[2:])
	if hour > 23 || minute > 59 {
		return 0, 0, &ValidationError{Field: field, Value: s, Reason: "hour must be between 00 and 23, and minute between 00 and 59"}
	}
	return hour, minute, nil
}

// AtClock places a 4-digit time of day on day.
func AtClock(day time.Time, field, s string) (time.Time, error) {
	hour, minute, err := ParseClock(field, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}
