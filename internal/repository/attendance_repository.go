package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, person_id, person_category, location_id, date, checkin_time, checkout_time, status, remarks, created_at, updated_at`

// Create inserts a new attendance record. A partial unique index on
// (person_id, date) WHERE checkin_time IS NULL OR checkout_time IS NULL backs
// the one-incomplete-record-per-day invariant; concurrent losers surface as
// Conflict here.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO attendance_records (id, person_id, person_category, location_id, date, checkin_time, checkout_time, status, remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.PersonID, record.PersonCategory, record.LocationID, record.Date,
		record.CheckinTime, record.CheckoutTime, record.Status, record.Remarks,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "an incomplete attendance record already exists for this person today")
		}
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// GetByID loads a single attendance record.
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE id = $1`, attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return &record, nil
}

// FindIncomplete returns the record missing a timestamp for the person/date,
// or nil when none exists.
func (r *AttendanceRepository) FindIncomplete(ctx context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE person_id = $1 AND person_category = $2 AND date = $3
AND (checkin_time IS NULL OR checkout_time IS NULL)`, attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, personID, category, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find incomplete attendance record: %w", err)
	}
	return &record, nil
}

// FindOpenForCheckout locates the unique checked-in record for the person on
// the given date that has a check-in time and no checkout time yet.
func (r *AttendanceRepository) FindOpenForCheckout(ctx context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE person_id = $1 AND person_category = $2 AND date = $3
AND status = $4 AND checkin_time IS NOT NULL AND checkout_time IS NULL`, attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, personID, category, date, models.AttendanceStatusCheckedIn); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no open check-in found for this person today")
		}
		return nil, fmt.Errorf("find open attendance record: %w", err)
	}
	return &record, nil
}

// Update persists transition results: timestamps, status and remarks.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	query := `UPDATE attendance_records
SET checkin_time = $1, checkout_time = $2, status = $3, remarks = $4, updated_at = $5
WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		record.CheckinTime, record.CheckoutTime, record.Status, record.Remarks, record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance record rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}
	return nil
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PersonID != "" {
		where = append(where, fmt.Sprintf("person_id = $%d", len(args)+1))
		args = append(args, filter.PersonID)
	}
	if filter.Category != nil && filter.Category.Valid() {
		where = append(where, fmt.Sprintf("person_category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.LocationID != "" {
		where = append(where, fmt.Sprintf("location_id = $%d", len(args)+1))
		args = append(args, filter.LocationID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"date":       "date",
		"status":     "status",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s
ORDER BY %s %s
LIMIT %d OFFSET %d`, attendanceColumns, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}
	return rows, total, nil
}
