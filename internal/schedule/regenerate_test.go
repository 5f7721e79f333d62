package schedule

import (
	"testing"
	"time"
)

func TestRegenerateEmptySchedule(t *testing.T) {
	if got := Regenerate(nil, time.Now()); got != nil {
		t.Fatalf("expected nil for empty schedule, got %v", got)
	}
}

func TestRegenerateFirstEntryEqualsPurchaseDate(t *testing.T) {
	purchase := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.Local)
	entries := []Entry{{PaymentNumber: 1, PlannedAmount: amount(1000), Status: StatusPending}}

	out := Regenerate(entries, purchase)
	if out[0].PlannedDate != "20.01.2024" {
		t.Fatalf("expected 20.01.2024 got %s", out[0].PlannedDate)
	}
}

func TestRegenerateMonthlyCadence(t *testing.T) {
	purchase := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.Local)
	entries := []Entry{
		{PaymentNumber: 1, PlannedDate: "15.01.2024", PlannedAmount: amount(1000), Status: StatusPaid, ActualDate: "15.01.2024", ActualAmount: amount(1000)},
		{PaymentNumber: 2, PlannedDate: "15.02.2024", PlannedAmount: amount(1000), Status: StatusPending},
	}

	out := Regenerate(entries, purchase)
	if out[0].PlannedDate != "20.01.2024" {
		t.Fatalf("entry 1: expected 20.01.2024 got %s", out[0].PlannedDate)
	}
	if out[1].PlannedDate != "20.02.2024" {
		t.Fatalf("entry 2: expected 20.02.2024 got %s", out[1].PlannedDate)
	}
}

func TestRegeneratePreservesOtherFields(t *testing.T) {
	purchase := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	entries := []Entry{
		{
			PaymentNumber: 2,
			PlannedDate:   "01.01.2000",
			PlannedAmount: amount(750),
			Status:        StatusPaid,
			ActualDate:    "03.04.2024",
			ActualAmount:  amount(700),
			Difference:    amount(50),
			Discrepancy:   DiscrepancyUnderpaid,
			Description:   "second installment",
		},
	}

	out := Regenerate(entries, purchase)
	got := out[0]
	if got.PlannedDate != "01.04.2024" {
		t.Fatalf("expected 01.04.2024 got %s", got.PlannedDate)
	}
	if got.PaymentNumber != 2 || *got.PlannedAmount != 750 || got.Status != StatusPaid {
		t.Fatalf("core fields not preserved: %+v", got)
	}
	if got.ActualDate != "03.04.2024" || *got.ActualAmount != 700 || *got.Difference != 50 || got.Discrepancy != DiscrepancyUnderpaid {
		t.Fatalf("actual-payment fields not preserved: %+v", got)
	}
	if got.Description != "second installment" {
		t.Fatalf("legacy fields not preserved: %+v", got)
	}
	// Input untouched.
	if entries[0].PlannedDate != "01.01.2000" {
		t.Fatalf("input schedule mutated: %+v", entries[0])
	}
}

func TestRegenerateIdempotent(t *testing.T) {
	purchase := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.Local)
	entries := []Entry{
		{PaymentNumber: 1, PlannedAmount: amount(100), Status: StatusPending},
		{PaymentNumber: 2, PlannedAmount: amount(100), Status: StatusPending},
		{PaymentNumber: 3, PlannedAmount: amount(100), Status: StatusPending},
	}

	once := Regenerate(entries, purchase)
	twice := Regenerate(once, purchase)
	for i := range once {
		if once[i].PlannedDate != twice[i].PlannedDate {
			t.Fatalf("entry %d not idempotent: %s != %s", i+1, once[i].PlannedDate, twice[i].PlannedDate)
		}
	}
	// May 31 + 1 month rolls over to July 1.
	if twice[1].PlannedDate != "01.07.2024" {
		t.Fatalf("expected month rollover to 01.07.2024, got %s", twice[1].PlannedDate)
	}
}

func TestNormalizeLegacyShape(t *testing.T) {
	entries := []Entry{
		{PaymentNumber: 1, Date: "15.01.2024", Amount: amount(900), Description: "initial"},
		{PaymentNumber: 2, PlannedDate: "15.02.2024", PlannedAmount: amount(900), Status: StatusPaid},
	}

	out := Normalize(entries)
	if out[0].PlannedDate != "15.01.2024" || out[0].PlannedAmount == nil || *out[0].PlannedAmount != 900 {
		t.Fatalf("legacy entry not normalized: %+v", out[0])
	}
	if out[0].Status != StatusPending {
		t.Fatalf("expected defaulted pending status, got %s", out[0].Status)
	}
	if out[0].Date != "15.01.2024" || out[0].Description != "initial" {
		t.Fatalf("legacy fields should be kept: %+v", out[0])
	}
	if out[1].Status != StatusPaid {
		t.Fatalf("current-shape entry changed: %+v", out[1])
	}
}
