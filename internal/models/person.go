package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersonCategory distinguishes the two populations subject to checkout deductions.
type PersonCategory string

const (
	PersonCategoryResident PersonCategory = "resident"
	PersonCategoryStaff    PersonCategory = "staff"
)

// Valid returns true when the category is a supported value.
func (c PersonCategory) Valid() bool {
	switch c {
	case PersonCategoryResident, PersonCategoryStaff:
		return true
	default:
		return false
	}
}

// Person is a read-only projection from the person directory. The periodic
// base amount is the monthly fee for residents and the monthly salary for staff.
type Person struct {
	ID            string          `db:"id" json:"id"`
	Category      PersonCategory  `db:"category" json:"category"`
	FullName      string          `db:"full_name" json:"full_name"`
	MonthlyAmount decimal.Decimal `db:"monthly_amount" json:"monthly_amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
