package schedule

import (
	"math"
	"time"
)

// OverdueDays reports how many days the schedule is delinquent as of today.
//
// Entries are scanned in their stored order, which is the installment order;
// the first entry whose status is not paid decides the outcome. If its
// planned date is strictly before today (both truncated to midnight) the
// result is the day count between them, otherwise 0. Later entries are
// never inspected. An empty schedule, or a first unpaid entry whose planned
// date does not parse, yields 0.
func OverdueDays(entries []Entry, now time.Time) int {
	today := Midnight(now)

	for _, e := range entries {
		if e.Status == StatusPaid {
			continue
		}
		planned, ok := ParseDate(e.PlannedDate)
		if !ok {
			return 0
		}
		planned = Midnight(planned)
		if planned.Before(today) {
			return int(math.Ceil(today.Sub(planned).Hours() / 24))
		}
		return 0
	}

	return 0
}
