package services

import (
	"time"

	"vms-backend/internal/apperr"
)

// rangeStart maps a named range to its start instant relative to now.
// Supported names: today, week, month, 6months, year.
func rangeStart(name string, now time.Time) (time.Time, error) {
	switch name {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "6months":
		return now.AddDate(0, -6, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, apperr.Newf(apperr.KindValidation, "invalid range: %s", name)
	}
}

// dayBounds returns [start of day, start of next day) for the given instant.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// normalizePage clamps paging parameters to sane values.
func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
