package analytics

// CompanyTotals is the planned-vs-actual rollup for one branch within the
// target period. ID is nil for sales that carry no company id.
type CompanyTotals struct {
	ID                 *int64  `json:"id"`
	Name               string  `json:"name"`
	Planned            float64 `json:"planned"`
	Actual             float64 `json:"actual"`
	PlannedPeopleCount int     `json:"plannedPeopleCount"`
	ActualPeopleCount  int     `json:"actualPeopleCount"`
}

// MonthTotals is the planned-vs-actual rollup for one calendar month,
// keyed YYYY-MM.
type MonthTotals struct {
	Month              string  `json:"month"`
	Planned            float64 `json:"planned"`
	Actual             float64 `json:"actual"`
	PlannedPeopleCount int     `json:"plannedPeopleCount"`
	ActualPeopleCount  int     `json:"actualPeopleCount"`
}

// Data is the full analytics response for a target (month, year).
type Data struct {
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	TotalPlanned float64         `json:"totalPlanned"`
	TotalActual  float64         `json:"totalActual"`
	ByCompany    []CompanyTotals `json:"byCompany"`
	ByMonth      []MonthTotals   `json:"byMonth"`
}
