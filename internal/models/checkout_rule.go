package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRule governs what share of a person's periodic fee is forfeited for
// a checkout. At most one rule per person may be active at any time.
type CheckoutRule struct {
	ID              string          `db:"id" json:"id"`
	PersonID        string          `db:"person_id" json:"person_id"`
	PersonCategory  PersonCategory  `db:"person_category" json:"person_category"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	ActiveAfterDays *int            `db:"active_after_days" json:"active_after_days,omitempty"`
	Percentage      decimal.Decimal `db:"percentage" json:"percentage"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
