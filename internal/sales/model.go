package sales

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

// Status is the lifecycle state of a sale's payment tracking.
type Status string

const (
	StatusActive    Status = "active"
	StatusOverdue   Status = "overdue"
	StatusUnderpaid Status = "underpaid"
	StatusPaidOff   Status = "paid_off"
	StatusCompleted Status = "completed"
)

// ValidStatus reports whether s is a known sale status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusOverdue, StatusUnderpaid, StatusPaidOff, StatusCompleted:
		return true
	}
	return false
}

// HistoryEntry is the legacy per-payment log, superseded by the schedule's
// own status tracking but still stored and returned for old records.
type HistoryEntry struct {
	Date        string   `json:"date,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Sale is one subscription purchase record and its payment tracking state.
type Sale struct {
	ID       int64  `json:"id" db:"id"`
	SaleID   int64  `json:"sale_id" db:"sale_id"`
	LeadID   int64  `json:"lead_id" db:"lead_id"`
	ClientID *int64 `json:"client_id,omitempty" db:"client_id"`
	// CompanyID identifies the branch the sale belongs to; analytics groups by it.
	CompanyID   *int64  `json:"company_id,omitempty" db:"company_id"`
	ClientName  *string `json:"client_name,omitempty" db:"client_name"`
	ClientPhone string  `json:"client_phone" db:"client_phone"`
	MasterName  *string `json:"master_name,omitempty" db:"master_name"`

	TotalCost         float64    `json:"total_cost" db:"total_cost"`
	PurchaseDate      time.Time  `json:"purchase_date" db:"purchase_date"`
	IsInstallment     bool       `json:"is_installment" db:"is_installment"`
	TotalPayments     int        `json:"total_payments" db:"total_payments"`
	PaymentsMade      int        `json:"payments_made" db:"payments_made"`
	NextPaymentDate   *time.Time `json:"next_payment_date,omitempty" db:"next_payment_date"`
	NextPaymentAmount *float64   `json:"next_payment_amount,omitempty" db:"next_payment_amount"`
	IsFullyPaid       bool       `json:"is_fully_paid" db:"is_fully_paid"`
	Status            Status     `json:"status" db:"status"`

	OverdueDays     int      `json:"overdue_days" db:"overdue_days"`
	IsUnderpaid     bool     `json:"is_underpaid" db:"is_underpaid"`
	UnderpaidAmount *float64 `json:"underpaid_amount,omitempty" db:"underpaid_amount"`

	IsFrozen       bool       `json:"is_frozen" db:"is_frozen"`
	IsRefund       bool       `json:"is_refund" db:"is_refund"`
	RefundAmount   *float64   `json:"refund_amount,omitempty" db:"refund_amount"`
	IsBooked       bool       `json:"is_booked" db:"is_booked"`
	BookedDate     *time.Time `json:"booked_date,omitempty" db:"booked_date"`
	Comments       *string    `json:"comments,omitempty" db:"comments"`
	ContractNumber *string    `json:"contract_number,omitempty" db:"contract_number"`

	PaymentSchedule []schedule.Entry `json:"payment_schedule" db:"payment_schedule"`
	PaymentHistory  []HistoryEntry   `json:"payment_history,omitempty" db:"payment_history"`

	// Warnings surfaces recovered read-side problems (e.g. an unreadable
	// payment_schedule column) so a client can tell "no schedule" from
	// "corrupted schedule".
	Warnings []string `json:"warnings,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
