package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeductionStatistics is the aggregate snapshot served by the statistics engine.
type DeductionStatistics struct {
	StartDate                   time.Time               `json:"start_date"`
	EndDate                     time.Time               `json:"end_date"`
	LocationID                  *string                 `json:"location_id,omitempty"`
	TotalDeductedAmount         decimal.Decimal         `json:"total_deducted_amount"`
	TotalCheckoutRecords        int                     `json:"total_checkout_records"`
	AverageDeductionPerCheckout decimal.Decimal         `json:"average_deduction_per_checkout"`
	UniquePersonsWithDeductions int                     `json:"unique_persons_with_deductions"`
	ByMonth                     []MonthlyDeductionGroup `json:"by_month"`
	TopPersonsByDeduction       []PersonDeductionTotal  `json:"top_persons_by_deduction"`
	DeductionRanges             []DeductionRangeBucket  `json:"deduction_ranges"`
	GeneratedAt                 time.Time               `json:"generated_at"`
}

// MonthlyDeductionGroup reports per-calendar-month ledger totals.
type MonthlyDeductionGroup struct {
	Month         string          `json:"month"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Count         int             `json:"count"`
	UniquePersons int             `json:"unique_persons"`
}

// PersonDeductionTotal ranks a person by summed deductions.
type PersonDeductionTotal struct {
	PersonID       string          `json:"person_id"`
	PersonCategory PersonCategory  `json:"person_category"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Count          int             `json:"count"`
}

// DeductionRangeBucket is one cell of the fixed amount histogram.
type DeductionRangeBucket struct {
	Label      string           `json:"label"`
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	Count      int              `json:"count"`
}
