package models

import (
	"strings"
	"time"
)

// ParseDate parses a date value as used by API payloads and the import feed.
// Supported formats:
// - YYYY-MM-DD
// - MM/DD/YYYY
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("01/02/2006", value); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// ParseDatePtr is ParseDate returning a pointer, nil when absent or invalid
func ParseDatePtr(value string) *time.Time {
	if t, ok := ParseDate(value); ok {
		return &t
	}
	return nil
}
