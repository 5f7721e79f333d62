package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

var (
	// ErrInvalidDate indicates a date string that parses in neither the
	// ISO nor the localized format.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidStatus indicates an unknown sale status value.
	ErrInvalidStatus = errors.New("invalid status")
)

// Service orchestrates sale CRUD and keeps the denormalized payment caches
// (overdue_days, payments_made, next payment, fully-paid flag) in step with
// the payment schedule.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a sale service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	purchase, ok := schedule.ParseDate(req.PurchaseDate)
	if !ok {
		return nil, fmt.Errorf("%w: purchase_date", ErrInvalidDate)
	}

	status := StatusActive
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		status = *req.Status
	}

	var bookedDate *time.Time
	if req.BookedDate != nil && *req.BookedDate != "" {
		d, ok := schedule.ParseDate(*req.BookedDate)
		if !ok {
			return nil, fmt.Errorf("%w: booked_date", ErrInvalidDate)
		}
		bookedDate = &d
	}

	entries := schedule.Normalize(req.PaymentSchedule)
	state := deriveScheduleState(entries, s.now())

	sale := Sale{
		SaleID:            req.SaleID,
		LeadID:            req.LeadID,
		ClientID:          req.ClientID,
		CompanyID:         req.CompanyID,
		ClientName:        req.ClientName,
		ClientPhone:       req.ClientPhone,
		MasterName:        req.MasterName,
		TotalCost:         req.TotalCost,
		PurchaseDate:      purchase,
		IsInstallment:     req.IsInstallment,
		TotalPayments:     req.TotalPayments,
		PaymentsMade:      state.paymentsMade,
		NextPaymentDate:   state.nextPaymentDate,
		NextPaymentAmount: state.nextPaymentAmount,
		IsFullyPaid:       state.isFullyPaid,
		Status:            status,
		OverdueDays:       state.overdueDays,
		IsFrozen:          req.IsFrozen,
		IsBooked:          req.IsBooked,
		BookedDate:        bookedDate,
		Comments:          req.Comments,
		ContractNumber:    req.ContractNumber,
		PaymentSchedule:   entries,
	}

	return s.repo.Create(ctx, sale)
}

func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Sale, error) {
	return s.repo.List(ctx, filters)
}

// Update applies a partial update. Replacing the payment schedule recomputes
// overdue days and the other denormalized caches within the same request.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSaleRequest) (*Sale, error) {
	patch, err := s.buildPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.repo.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// RegenerateSchedule recomputes every planned date from the sale's purchase
// date and the entries' installment numbers, persisting the replacement
// schedule and the recomputed caches atomically. The second return value is
// false when the sale has no schedule to regenerate.
func (s *Service) RegenerateSchedule(ctx context.Context, id int64) (*Sale, bool, error) {
	return s.repo.RegenerateSchedule(ctx, id, func(sale Sale) (Patch, bool) {
		if len(sale.PaymentSchedule) == 0 {
			return Patch{}, false
		}
		entries := schedule.Regenerate(sale.PaymentSchedule, sale.PurchaseDate)
		var patch Patch
		s.applySchedule(&patch, entries)
		return patch, true
	})
}

func (s *Service) buildPatch(req UpdateSaleRequest) (Patch, error) {
	var patch Patch

	if req.LeadID != nil {
		patch.LeadID = Set(*req.LeadID)
	}
	if req.ClientID != nil {
		patch.ClientID = Set(req.ClientID)
	}
	if req.CompanyID != nil {
		patch.CompanyID = Set(req.CompanyID)
	}
	if req.ClientName != nil {
		patch.ClientName = Set(req.ClientName)
	}
	if req.ClientPhone != nil {
		patch.ClientPhone = Set(*req.ClientPhone)
	}
	if req.MasterName != nil {
		patch.MasterName = Set(req.MasterName)
	}
	if req.TotalCost != nil {
		patch.TotalCost = Set(*req.TotalCost)
	}
	if req.PurchaseDate != nil {
		d, ok := schedule.ParseDate(*req.PurchaseDate)
		if !ok {
			return Patch{}, fmt.Errorf("%w: purchase_date", ErrInvalidDate)
		}
		patch.PurchaseDate = Set(d)
	}
	if req.IsInstallment != nil {
		patch.IsInstallment = Set(*req.IsInstallment)
	}
	if req.TotalPayments != nil {
		patch.TotalPayments = Set(*req.TotalPayments)
	}
	if req.PaymentsMade != nil {
		patch.PaymentsMade = Set(*req.PaymentsMade)
	}
	if req.NextPaymentDate != nil {
		date, err := optionalDate(*req.NextPaymentDate, "next_payment_date")
		if err != nil {
			return Patch{}, err
		}
		patch.NextPaymentDate = Set(date)
	}
	if req.NextPaymentAmount != nil {
		patch.NextPaymentAmount = Set(req.NextPaymentAmount)
	}
	if req.IsFullyPaid != nil {
		patch.IsFullyPaid = Set(*req.IsFullyPaid)
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return Patch{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		patch.Status = Set(*req.Status)
	}
	if req.IsUnderpaid != nil {
		patch.IsUnderpaid = Set(*req.IsUnderpaid)
	}
	if req.UnderpaidAmount != nil {
		patch.UnderpaidAmount = Set(req.UnderpaidAmount)
	}
	if req.IsFrozen != nil {
		patch.IsFrozen = Set(*req.IsFrozen)
	}
	if req.IsRefund != nil {
		patch.IsRefund = Set(*req.IsRefund)
	}
	if req.RefundAmount != nil {
		patch.RefundAmount = Set(req.RefundAmount)
	}
	if req.IsBooked != nil {
		patch.IsBooked = Set(*req.IsBooked)
	}
	if req.BookedDate != nil {
		date, err := optionalDate(*req.BookedDate, "booked_date")
		if err != nil {
			return Patch{}, err
		}
		patch.BookedDate = Set(date)
	}
	if req.Comments != nil {
		patch.Comments = Set(req.Comments)
	}
	if req.ContractNumber != nil {
		patch.ContractNumber = Set(req.ContractNumber)
	}
	if req.PaymentHistory != nil {
		patch.PaymentHistory = Set(*req.PaymentHistory)
	}
	if req.PaymentSchedule != nil {
		// Schedule replacement wins over any explicitly supplied caches.
		s.applySchedule(&patch, schedule.Normalize(*req.PaymentSchedule))
	}

	return patch, nil
}

// applySchedule puts a replacement schedule and its derived caches on the patch.
func (s *Service) applySchedule(patch *Patch, entries []schedule.Entry) {
	state := deriveScheduleState(entries, s.now())
	patch.PaymentSchedule = Set(entries)
	patch.OverdueDays = Set(state.overdueDays)
	patch.PaymentsMade = Set(state.paymentsMade)
	patch.NextPaymentDate = Set(state.nextPaymentDate)
	patch.NextPaymentAmount = Set(state.nextPaymentAmount)
	patch.IsFullyPaid = Set(state.isFullyPaid)
}

type scheduleState struct {
	overdueDays       int
	paymentsMade      int
	nextPaymentDate   *time.Time
	nextPaymentAmount *float64
	isFullyPaid       bool
}

func deriveScheduleState(entries []schedule.Entry, now time.Time) scheduleState {
	state := scheduleState{overdueDays: schedule.OverdueDays(entries, now)}

	for _, e := range entries {
		if e.Status == schedule.StatusPaid {
			state.paymentsMade++
		}
	}
	state.isFullyPaid = len(entries) > 0 && state.paymentsMade == len(entries)

	for _, e := range entries {
		if e.Status == schedule.StatusPaid {
			continue
		}
		if d, ok := schedule.ParseDate(e.PlannedDate); ok {
			d = schedule.Midnight(d)
			state.nextPaymentDate = &d
		}
		if e.PlannedAmount != nil {
			amount := *e.PlannedAmount
			state.nextPaymentAmount = &amount
		}
		break
	}

	return state
}

func optionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, ok := schedule.ParseDate(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, field)
	}
	return &d, nil
}
