package utils

import (
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutClock = "15:04"
)

// FormatDate formats t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// FormatClock formats t as 24h HH:MM in its own location.
func FormatClock(t time.Time) string {
	return t.Format(layoutClock)
}
