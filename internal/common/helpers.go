// Package common contains utilities used across the whole project:
// calendar-day math, reward formatting and JSON responses.
package common

import (
	"time"
)

// DayLayout is the calendar-day format stored in day-gated fields.
const DayLayout = "2006-01-02"

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the production Clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// DayString returns the UTC calendar day of t, e.g. "2026-10-16".
// Daily gates compare these strings, so every day-gated action rolls over
// at UTC midnight regardless of the server's local zone.
func DayString(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// UnixMillis returns t as epoch milliseconds, the unit of interval gates.
func UnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds back to a UTC time.
// Zero means "never" and maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// MinInt64 returns the smaller of a and b.
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
