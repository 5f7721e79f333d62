package sales

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

// Field is an optional update for a single column: the zero value means
// "unchanged", Set wraps a value (possibly nil for nullable columns) into
// "set to". Patches built from it cannot express an accidental overwrite.
type Field[T any] struct {
	set   bool
	value T
}

// Set marks the field as updated to v.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Get returns the pending value and whether the field is set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// Patch is a declarative partial update of a sale. It is built once by the
// service and applied by the repository as a single UPDATE; no clause
// construction happens outside the repository.
type Patch struct {
	LeadID            Field[int64]
	ClientID          Field[*int64]
	CompanyID         Field[*int64]
	ClientName        Field[*string]
	ClientPhone       Field[string]
	MasterName        Field[*string]
	TotalCost         Field[float64]
	PurchaseDate      Field[time.Time]
	IsInstallment     Field[bool]
	TotalPayments     Field[int]
	PaymentsMade      Field[int]
	NextPaymentDate   Field[*time.Time]
	NextPaymentAmount Field[*float64]
	IsFullyPaid       Field[bool]
	Status            Field[Status]
	OverdueDays       Field[int]
	IsUnderpaid       Field[bool]
	UnderpaidAmount   Field[*float64]
	IsFrozen          Field[bool]
	IsRefund          Field[bool]
	RefundAmount      Field[*float64]
	IsBooked          Field[bool]
	BookedDate        Field[*time.Time]
	Comments          Field[*string]
	ContractNumber    Field[*string]
	PaymentSchedule   Field[[]schedule.Entry]
	PaymentHistory    Field[[]HistoryEntry]
}

type patchColumn struct {
	name  string
	value any
}

func appendColumn[T any](cols []patchColumn, name string, f Field[T]) []patchColumn {
	if v, ok := f.Get(); ok {
		cols = append(cols, patchColumn{name: name, value: v})
	}
	return cols
}

// columns flattens the patch into the ordered column/value pairs the
// repository binds into the UPDATE statement.
func (p Patch) columns() []patchColumn {
	var cols []patchColumn
	cols = appendColumn(cols, "lead_id", p.LeadID)
	cols = appendColumn(cols, "client_id", p.ClientID)
	cols = appendColumn(cols, "company_id", p.CompanyID)
	cols = appendColumn(cols, "client_name", p.ClientName)
	cols = appendColumn(cols, "client_phone", p.ClientPhone)
	cols = appendColumn(cols, "master_name", p.MasterName)
	cols = appendColumn(cols, "total_cost", p.TotalCost)
	cols = appendColumn(cols, "purchase_date", p.PurchaseDate)
	cols = appendColumn(cols, "is_installment", p.IsInstallment)
	cols = appendColumn(cols, "total_payments", p.TotalPayments)
	cols = appendColumn(cols, "payments_made", p.PaymentsMade)
	cols = appendColumn(cols, "next_payment_date", p.NextPaymentDate)
	cols = appendColumn(cols, "next_payment_amount", p.NextPaymentAmount)
	cols = appendColumn(cols, "is_fully_paid", p.IsFullyPaid)
	cols = appendColumn(cols, "status", p.Status)
	cols = appendColumn(cols, "overdue_days", p.OverdueDays)
	cols = appendColumn(cols, "is_underpaid", p.IsUnderpaid)
	cols = appendColumn(cols, "underpaid_amount", p.UnderpaidAmount)
	cols = appendColumn(cols, "is_frozen", p.IsFrozen)
	cols = appendColumn(cols, "is_refund", p.IsRefund)
	cols = appendColumn(cols, "refund_amount", p.RefundAmount)
	cols = appendColumn(cols, "is_booked", p.IsBooked)
	cols = appendColumn(cols, "booked_date", p.BookedDate)
	cols = appendColumn(cols, "comments", p.Comments)
	cols = appendColumn(cols, "contract_number", p.ContractNumber)
	cols = appendColumn(cols, "payment_schedule", p.PaymentSchedule)
	cols = appendColumn(cols, "payment_history", p.PaymentHistory)
	return cols
}

// Empty reports whether the patch updates nothing.
func (p Patch) Empty() bool {
	return len(p.columns()) == 0
}
