// Package clock holds the ISO-8601 timestamp helpers shared by the repositories.
// All timestamps are UTC strings with millisecond precision.
package clock

import (
	"fmt"
	"time"
)

const (
	Layout    = "2006-01-02T15:04:05.000Z07:00"
	DayLayout = "2006-01-02"
)

// ISO formats t in the persisted timestamp layout.
func ISO(t time.Time) string {
	return t.UTC().Format(Layout)
}

func NowISO() string {
	return ISO(time.Now())
}

// Parse accepts full RFC 3339 timestamps (with or without fractional seconds) and bare dates.
func Parse(iso string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DayLayout, iso); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", iso)
}

// DayKey returns the UTC calendar day (YYYY-MM-DD) of iso, or "" when unparsable.
func DayKey(iso string) string {
	t, err := Parse(iso)
	if err != nil {
		return ""
	}
	return t.Format(DayLayout)
}

func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameDay reports whether both timestamps fall on the same UTC calendar day.
func SameDay(a, b string) bool {
	ka := DayKey(a)
	return ka != "" && ka == DayKey(b)
}

// DaysUntil counts whole calendar days from now's day to end's day; negative means overdue.
func DaysUntil(endISO, nowISO string) (int, error) {
	end, err := Parse(endISO)
	if err != nil {
		return 0, err
	}
	now, err := Parse(nowISO)
	if err != nil {
		return 0, err
	}
	return int(startOfDay(end).Sub(startOfDay(now)).Hours() / 24), nil
}

func IsOverdue(endISO, nowISO string) bool {
	d, err := DaysUntil(endISO, nowISO)
	return err == nil && d < 0
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
