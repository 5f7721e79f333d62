// Package analytics folds every sale's payment schedule into per-month and
// per-branch planned-vs-actual collection totals.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/meridian-crm/meridian-crm/internal/sales"
	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

// SaleSource supplies the full sale set; aggregation re-reads and re-scans
// it on every request, by contract.
type SaleSource interface {
	ListAll(ctx context.Context) ([]sales.Sale, error)
}

// BranchDirectory resolves branch names for grouping.
type BranchDirectory interface {
	Names(ctx context.Context) (map[int64]string, error)
}

// Service computes collection analytics over the sale set.
type Service struct {
	source   SaleSource
	branches BranchDirectory
	now      func() time.Time
}

// NewService wires a sale source with the injected branch directory.
func NewService(source SaleSource, branches BranchDirectory) *Service {
	return &Service{source: source, branches: branches, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

type bucket struct {
	planned       float64
	actual        float64
	plannedPeople map[int64]struct{}
	actualPeople  map[int64]struct{}
}

func newBucket() *bucket {
	return &bucket{
		plannedPeople: make(map[int64]struct{}),
		actualPeople:  make(map[int64]struct{}),
	}
}

type companyBucket struct {
	bucket
	id *int64
}

// Collect aggregates planned and actual cash flow for the target (month,
// year), defaulting to the current month and year when zero. Entries with
// unparseable dates contribute nothing; a sale with no schedule contributes
// zero to every bucket.
func (s *Service) Collect(ctx context.Context, month, year int) (*Data, error) {
	if month == 0 || year == 0 {
		now := s.now()
		if month == 0 {
			month = int(now.Month())
		}
		if year == 0 {
			year = now.Year()
		}
	}

	saleSet, err := s.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: load sales: %w", err)
	}
	names, err := s.branches.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: load branch names: %w", err)
	}

	data := &Data{Month: month, Year: year}
	months := map[string]*bucket{}
	companies := map[string]*companyBucket{}

	monthOf := func(m map[string]*bucket, key string) *bucket {
		b, ok := m[key]
		if !ok {
			b = newBucket()
			m[key] = b
		}
		return b
	}
	companyOf := func(companyID *int64) *companyBucket {
		key := "unknown"
		if companyID != nil {
			key = strconv.FormatInt(*companyID, 10)
		}
		cb, ok := companies[key]
		if !ok {
			cb = &companyBucket{bucket: *newBucket(), id: companyID}
			companies[key] = cb
		}
		return cb
	}

	for _, sale := range saleSet {
		for _, entry := range sale.PaymentSchedule {
			if planned, ok := schedule.ParseDate(entry.PlannedDate); ok {
				amount := entryAmount(entry.PlannedAmount)
				key := monthKey(planned)
				mb := monthOf(months, key)
				mb.planned += amount
				mb.plannedPeople[sale.ID] = struct{}{}

				if planned.Year() == year && int(planned.Month()) == month {
					data.TotalPlanned += amount
					cb := companyOf(sale.CompanyID)
					cb.planned += amount
					cb.plannedPeople[sale.ID] = struct{}{}
				}
			}

			if entry.Status != schedule.StatusPaid {
				continue
			}
			if actual, ok := schedule.ParseDate(entry.ActualDate); ok {
				amount := entryAmount(entry.ActualAmount)
				key := monthKey(actual)
				mb := monthOf(months, key)
				mb.actual += amount
				mb.actualPeople[sale.ID] = struct{}{}

				if actual.Year() == year && int(actual.Month()) == month {
					data.TotalActual += amount
					cb := companyOf(sale.CompanyID)
					cb.actual += amount
					cb.actualPeople[sale.ID] = struct{}{}
				}
			}
		}
	}

	data.ByMonth = flattenMonths(months)
	data.ByCompany = flattenCompanies(companies, names)
	return data, nil
}

func entryAmount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func flattenMonths(months map[string]*bucket) []MonthTotals {
	out := make([]MonthTotals, 0, len(months))
	for key, b := range months {
		out = append(out, MonthTotals{
			Month:              key,
			Planned:            b.planned,
			Actual:             b.actual,
			PlannedPeopleCount: len(b.plannedPeople),
			ActualPeopleCount:  len(b.actualPeople),
		})
	}
	// Lexicographic ascending equals chronological for zero-padded keys.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func flattenCompanies(companies map[string]*companyBucket, names map[int64]string) []CompanyTotals {
	out := make([]CompanyTotals, 0, len(companies))
	for _, cb := range companies {
		out = append(out, CompanyTotals{
			ID:                 cb.id,
			Name:               branchName(cb.id, names),
			Planned:            cb.planned,
			Actual:             cb.actual,
			PlannedPeopleCount: len(cb.plannedPeople),
			ActualPeopleCount:  len(cb.actualPeople),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		// Known branches by id ascending, the unknown bucket last.
		switch {
		case out[i].ID == nil:
			return false
		case out[j].ID == nil:
			return true
		default:
			return *out[i].ID < *out[j].ID
		}
	})
	return out
}

func branchName(id *int64, names map[int64]string) string {
	if id == nil {
		return "Branch Unknown"
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return "Branch " + strconv.FormatInt(*id, 10)
}
