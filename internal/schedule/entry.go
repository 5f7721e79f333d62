package schedule

// EntryStatus tracks the payment state of a single installment.
type EntryStatus string

const (
	StatusPending EntryStatus = "pending"
	StatusPaid    EntryStatus = "paid"
	StatusOverdue EntryStatus = "overdue"
)

// Discrepancy classifies an actual vs. planned amount mismatch.
type Discrepancy string

const (
	DiscrepancyOverpaid  Discrepancy = "overpaid"
	DiscrepancyUnderpaid Discrepancy = "underpaid"
	DiscrepancyExact     Discrepancy = "exact"
)

// Entry is one planned installment within a sale's payment schedule.
// Older records carry the legacy Date/Amount/Description shape instead of
// the planned_* fields; Normalize folds them into the current shape.
type Entry struct {
	PaymentNumber int         `json:"payment_number"`
	PlannedDate   string      `json:"planned_date,omitempty"`
	PlannedAmount *float64    `json:"planned_amount,omitempty"`
	Status        EntryStatus `json:"status,omitempty"`
	ActualDate    string      `json:"actual_date,omitempty"`
	ActualAmount  *float64    `json:"actual_amount,omitempty"`
	Difference    *float64    `json:"difference,omitempty"`
	Discrepancy   Discrepancy `json:"discrepancy,omitempty"`

	// Legacy shape, superseded by planned_date/planned_amount.
	Date        string   `json:"date,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description string   `json:"description,omitempty"`
}

// IsInitial reports whether the entry is the "initial payment": number 1
// with both planned fields defined.
func (e Entry) IsInitial() bool {
	return e.PaymentNumber == 1 && e.PlannedDate != "" && e.PlannedAmount != nil
}

// Normalize maps a legacy-shaped entry onto the current shape and defaults
// the status, so business logic never branches on shape. The legacy fields
// are kept as-is for write-back fidelity.
func Normalize(entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.PlannedDate == "" && e.Date != "" {
			e.PlannedDate = e.Date
		}
		if e.PlannedAmount == nil && e.Amount != nil {
			amount := *e.Amount
			e.PlannedAmount = &amount
		}
		if e.Status == "" {
			e.Status = StatusPending
		}
		out[i] = e
	}
	return out
}
