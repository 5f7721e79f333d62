package sales

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

// CreateSaleRequest carries the minimal insert payload plus optional fields.
// Dates arrive as strings because upstream systems send both ISO and
// localized forms; the service normalizes them through the date adapter.
type CreateSaleRequest struct {
	SaleID          int64            `json:"sale_id" validate:"required,gt=0"`
	LeadID          int64            `json:"lead_id" validate:"required,gt=0"`
	ClientID        *int64           `json:"client_id,omitempty"`
	CompanyID       *int64           `json:"company_id,omitempty"`
	ClientName      *string          `json:"client_name,omitempty"`
	ClientPhone     string           `json:"client_phone" validate:"required,min=3"`
	MasterName      *string          `json:"master_name,omitempty"`
	TotalCost       float64          `json:"total_cost" validate:"required,gt=0"`
	PurchaseDate    string           `json:"purchase_date" validate:"required"`
	IsInstallment   bool             `json:"is_installment"`
	TotalPayments   int              `json:"total_payments" validate:"gte=0"`
	Status          *Status          `json:"status,omitempty"`
	IsFrozen        bool             `json:"is_frozen"`
	IsBooked        bool             `json:"is_booked"`
	BookedDate      *string          `json:"booked_date,omitempty"`
	Comments        *string          `json:"comments,omitempty"`
	ContractNumber  *string          `json:"contract_number,omitempty"`
	PaymentSchedule []schedule.Entry `json:"payment_schedule,omitempty"`
}

// UpdateSaleRequest is the wire shape of a partial update. Every field is
// optional; absent fields leave the stored value untouched.
type UpdateSaleRequest struct {
	LeadID            *int64            `json:"lead_id,omitempty" validate:"omitempty,gt=0"`
	ClientID          *int64            `json:"client_id,omitempty"`
	CompanyID         *int64            `json:"company_id,omitempty"`
	ClientName        *string           `json:"client_name,omitempty"`
	ClientPhone       *string           `json:"client_phone,omitempty" validate:"omitempty,min=3"`
	MasterName        *string           `json:"master_name,omitempty"`
	TotalCost         *float64          `json:"total_cost,omitempty" validate:"omitempty,gt=0"`
	PurchaseDate      *string           `json:"purchase_date,omitempty"`
	IsInstallment     *bool             `json:"is_installment,omitempty"`
	TotalPayments     *int              `json:"total_payments,omitempty" validate:"omitempty,gte=0"`
	PaymentsMade      *int              `json:"payments_made,omitempty" validate:"omitempty,gte=0"`
	NextPaymentDate   *string           `json:"next_payment_date,omitempty"`
	NextPaymentAmount *float64          `json:"next_payment_amount,omitempty" validate:"omitempty,gte=0"`
	IsFullyPaid       *bool             `json:"is_fully_paid,omitempty"`
	Status            *Status           `json:"status,omitempty"`
	IsUnderpaid       *bool             `json:"is_underpaid,omitempty"`
	UnderpaidAmount   *float64          `json:"underpaid_amount,omitempty" validate:"omitempty,gte=0"`
	IsFrozen          *bool             `json:"is_frozen,omitempty"`
	IsRefund          *bool             `json:"is_refund,omitempty"`
	RefundAmount      *float64          `json:"refund_amount,omitempty" validate:"omitempty,gte=0"`
	IsBooked          *bool             `json:"is_booked,omitempty"`
	BookedDate        *string           `json:"booked_date,omitempty"`
	Comments          *string           `json:"comments,omitempty"`
	ContractNumber    *string           `json:"contract_number,omitempty"`
	PaymentSchedule   *[]schedule.Entry `json:"payment_schedule,omitempty"`
	PaymentHistory    *[]HistoryEntry   `json:"payment_history,omitempty"`
}

// ListFilters narrows and orders the sale listing.
type ListFilters struct {
	Search              string
	Status              *Status
	CompanyID           *int64
	ClientName          string
	MasterName          string
	PurchaseDateFrom    *time.Time
	PurchaseDateTo      *time.Time
	NextPaymentDateFrom *time.Time
	NextPaymentDateTo   *time.Time
	IsFrozen            *bool
	IsRefund            *bool
	IsBooked            *bool
	SortBy              string
	SortOrder           string
}
