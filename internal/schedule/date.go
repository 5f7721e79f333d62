// Package schedule holds the installment schedule model and the date,
// overdue and regeneration logic that operates on it.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// ParseDate normalizes a stored date string of unknown format to a calendar
// date. Strings containing '-' are read as ISO YYYY-MM-DD; strings containing
// '.' are read as localized DD.MM.YYYY. Every other shape, and any part that
// fails numeric parsing, yields ok=false. It never panics or errors.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "-") {
		t, err := time.ParseInLocation(isoLayout, s, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		day, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, false
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}

	return time.Time{}, false
}

// FormatDate renders a calendar date in the localized zero-padded
// DD.MM.YYYY form used across stored records.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d.%02d.%04d", t.Day(), int(t.Month()), t.Year())
}

// Midnight truncates a time to the start of its day in local time.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
