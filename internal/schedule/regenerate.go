package schedule

import "time"

// Regenerate recomputes every entry's planned date from the sale's purchase
// date: installment N lands N-1 calendar months after the purchase date,
// with the usual month-overflow rollover of AddDate. All other fields are
// passed through unchanged. The result is a full replacement schedule; an
// empty input yields nil, which callers report as "nothing to regenerate".
func Regenerate(entries []Entry, purchaseDate time.Time) []Entry {
	if len(entries) == 0 {
		return nil
	}

	base := Midnight(purchaseDate)
	out := make([]Entry, len(entries))
	for i, e := range entries {
		planned := base.AddDate(0, e.PaymentNumber-1, 0)
		e.PlannedDate = FormatDate(planned)
		out[i] = e
	}
	return out
}
