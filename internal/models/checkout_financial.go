package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutFinancial is an append-only ledger entry recording a realized
// deduction for exactly one attendance event. Only the duration, amount and
// rule reference may change afterwards, via explicit correction.
type CheckoutFinancial struct {
	ID                 string           `db:"id" json:"id"`
	PersonID           string           `db:"person_id" json:"person_id"`
	PersonCategory     PersonCategory   `db:"person_category" json:"person_category"`
	AttendanceRecordID string           `db:"attendance_record_id" json:"attendance_record_id"`
	CheckoutDuration   *float64         `db:"checkout_duration" json:"checkout_duration,omitempty"`
	DeductedAmount     decimal.Decimal  `db:"deducted_amount" json:"deducted_amount"`
	CheckoutRuleID     *string          `db:"checkout_rule_id" json:"checkout_rule_id,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// LedgerFilter scopes ledger listing queries.
type LedgerFilter struct {
	PersonID   string
	Category   *PersonCategory
	LocationID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// LedgerStatRow is a ledger entry joined with its attendance date, the unit
// the aggregation engine consumes.
type LedgerStatRow struct {
	EntryID        string          `db:"entry_id" json:"entry_id"`
	PersonID       string          `db:"person_id" json:"person_id"`
	PersonCategory PersonCategory  `db:"person_category" json:"person_category"`
	DeductedAmount decimal.Decimal `db:"deducted_amount" json:"deducted_amount"`
	AttendanceDate time.Time       `db:"attendance_date" json:"attendance_date"`
}
