package helpers

import (
	"time"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// DateLayout is the wire format for calendar dates (fecha_emision, fecha_caducidad).
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string, returns the default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses an ISO calendar date in the server's local time zone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.Local)
}

// Today returns the server's current local calendar date at midnight.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// FormatDate renders a calendar date in wire format; nil stays nil so the
// field serializes as JSON null.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
