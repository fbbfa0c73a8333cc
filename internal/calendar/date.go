package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

//nolint:gochecknoglobals
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize drops the time of day and returns the calendar date of t at UTC midnight.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a calendar date or an ISO date-time and keeps only the date as written.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value: %w", ErrInvalidDate)
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(DateLayout)
}

func dateKey(t time.Time) string {
	return Normalize(t).Format(DateLayout)
}
