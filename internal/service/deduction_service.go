package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

// Fixed rate convention: a month is 30 days, a day is 24 hours. Not
// calendar-aware; numeric compatibility with the historical reports depends
// on these exact divisors.
var (
	daysPerMonth = decimal.NewFromInt(30)
	hoursPerDay  = decimal.NewFromInt(24)
	hundred      = decimal.NewFromInt(100)
)

var defaultPreviewDurations = []int{1, 2, 4, 8, 12, 24}

type activeRuleResolver interface {
	ResolveActive(ctx context.Context, personID string, category models.PersonCategory) (*models.CheckoutRule, error)
}

// DeductionService derives rates from a person's periodic base amount and
// estimates forfeited amounts for what-if durations. It is advisory only:
// nothing here writes the ledger.
type DeductionService struct {
	rules            activeRuleResolver
	persons          personDirectory
	logger           *zap.Logger
	previewDurations []int
}

// NewDeductionService constructs the deduction preview service.
func NewDeductionService(rules activeRuleResolver, persons personDirectory, previewDurations []int, logger *zap.Logger) *DeductionService {
	if len(previewDurations) == 0 {
		previewDurations = defaultPreviewDurations
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeductionService{rules: rules, persons: persons, previewDurations: previewDurations, logger: logger}
}

// RateModel exposes the derived rates for a person.
type RateModel struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
}

// DeductionPreview is a single what-if estimate. HasActiveRule false means no
// deduction applies at all, which callers must distinguish from a zero amount.
type DeductionPreview struct {
	PersonID       string                `json:"person_id"`
	PersonCategory models.PersonCategory `json:"person_category"`
	HasActiveRule  bool                  `json:"has_active_rule"`
	RuleID         *string               `json:"rule_id,omitempty"`
	Percentage     *decimal.Decimal      `json:"percentage,omitempty"`
	Rates          RateModel             `json:"rates"`
	DurationHours  float64               `json:"duration_hours"`
	Deduction      *decimal.Decimal      `json:"deduction,omitempty"`
}

// DeductionPreviewTable is the canonical preview over the standard durations.
type DeductionPreviewTable struct {
	PersonID       string                `json:"person_id"`
	PersonCategory models.PersonCategory `json:"person_category"`
	HasActiveRule  bool                  `json:"has_active_rule"`
	RuleID         *string               `json:"rule_id,omitempty"`
	Percentage     *decimal.Decimal      `json:"percentage,omitempty"`
	Rates          RateModel             `json:"rates"`
	Entries        []PreviewEntry        `json:"entries"`
}

// PreviewEntry pairs a duration with its estimated deduction.
type PreviewEntry struct {
	DurationHours int             `json:"duration_hours"`
	Deduction     decimal.Decimal `json:"deduction"`
}

// Rates derives the daily and hourly rates for a base amount.
func Rates(monthlyAmount decimal.Decimal) RateModel {
	daily := monthlyAmount.Div(daysPerMonth)
	return RateModel{
		MonthlyAmount: monthlyAmount,
		DailyRate:     daily.Round(2),
		HourlyRate:    daily.Div(hoursPerDay).Round(2),
	}
}

// deductionFor computes hourlyRate × hours × percentage/100 at full precision,
// rounded to 2 decimal places for display.
func deductionFor(monthlyAmount decimal.Decimal, hours decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	hourly := monthlyAmount.Div(daysPerMonth).Div(hoursPerDay)
	return hourly.Mul(hours).Mul(percentage).Div(hundred).Round(2)
}

// Preview estimates the forfeited amount for a single duration.
func (s *DeductionService) Preview(ctx context.Context, personID string, category models.PersonCategory, durationHours float64) (*DeductionPreview, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person category")
	}
	if durationHours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
	}
	person, err := s.persons.GetByID(ctx, personID, category)
	if err != nil {
		return nil, err
	}

	preview := &DeductionPreview{
		PersonID:       personID,
		PersonCategory: category,
		Rates:          Rates(person.MonthlyAmount),
		DurationHours:  durationHours,
	}

	rule, err := s.rules.ResolveActive(ctx, personID, category)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return preview, nil
	}

	preview.HasActiveRule = true
	preview.RuleID = &rule.ID
	preview.Percentage = &rule.Percentage
	amount := deductionFor(person.MonthlyAmount, decimal.NewFromFloat(durationHours), rule.Percentage)
	preview.Deduction = &amount
	return preview, nil
}

// PreviewTable produces the canonical preview over the configured durations.
func (s *DeductionService) PreviewTable(ctx context.Context, personID string, category models.PersonCategory) (*DeductionPreviewTable, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person category")
	}
	person, err := s.persons.GetByID(ctx, personID, category)
	if err != nil {
		return nil, err
	}

	table := &DeductionPreviewTable{
		PersonID:       personID,
		PersonCategory: category,
		Rates:          Rates(person.MonthlyAmount),
	}

	rule, err := s.rules.ResolveActive(ctx, personID, category)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return table, nil
	}

	table.HasActiveRule = true
	table.RuleID = &rule.ID
	table.Percentage = &rule.Percentage
	table.Entries = make([]PreviewEntry, 0, len(s.previewDurations))
	for _, hours := range s.previewDurations {
		table.Entries = append(table.Entries, PreviewEntry{
			DurationHours: hours,
			Deduction:     deductionFor(person.MonthlyAmount, decimal.NewFromInt(int64(hours)), rule.Percentage),
		})
	}
	return table, nil
}
