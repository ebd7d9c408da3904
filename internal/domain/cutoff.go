package domain

import (
	"strings"
	"time"
)

// DefaultLookback is the window used when no --since value is given.
const DefaultLookback = 30 * 24 * time.Hour

// sinceLayouts are the ISO-8601 forms accepted for --since, most specific first.
// Values without a zone offset are read as UTC, which is how GitHub reports merged_at.
var sinceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseSince resolves the cutoff timestamp. An empty value yields now minus DefaultLookback.
func ParseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.Add(-DefaultLookback), nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &Error{Kind: KindInvalidDate, Message: value}
}
