package models

import "time"

// AttendanceStatus represents the presence lifecycle state of a record.
type AttendanceStatus string

const (
	AttendanceStatusCheckedIn  AttendanceStatus = "checked_in"
	AttendanceStatusPending    AttendanceStatus = "pending"
	AttendanceStatusCheckedOut AttendanceStatus = "checked_out"
	AttendanceStatusApproved   AttendanceStatus = "approved"
	AttendanceStatusDeclined   AttendanceStatus = "declined"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusCheckedIn, AttendanceStatusPending, AttendanceStatusCheckedOut,
		AttendanceStatusApproved, AttendanceStatusDeclined:
		return true
	default:
		return false
	}
}

// AttendanceRecord captures one person's presence at a location for a day.
type AttendanceRecord struct {
	ID             string           `db:"id" json:"id"`
	PersonID       string           `db:"person_id" json:"person_id"`
	PersonCategory PersonCategory   `db:"person_category" json:"person_category"`
	LocationID     *string          `db:"location_id" json:"location_id,omitempty"`
	Date           time.Time        `db:"date" json:"date"`
	CheckinTime    *time.Time       `db:"checkin_time" json:"checkin_time,omitempty"`
	CheckoutTime   *time.Time       `db:"checkout_time" json:"checkout_time,omitempty"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// Incomplete reports whether the record is missing either timestamp. An
// incomplete record blocks creation of a new one for the same person and date.
func (r AttendanceRecord) Incomplete() bool {
	return r.CheckinTime == nil || r.CheckoutTime == nil
}

// AttendanceFilter defines listing query filters.
type AttendanceFilter struct {
	PersonID   string
	Category   *PersonCategory
	LocationID string
	Status     *AttendanceStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
