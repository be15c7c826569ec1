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

// LedgerRepository handles persistence for checkout financial entries. The
// table carries a unique constraint on attendance_record_id; entries are never
// deleted and only the duration, amount and rule reference are updatable.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `id, person_id, person_category, attendance_record_id, checkout_duration, deducted_amount, checkout_rule_id, created_at, updated_at`

// Create appends a ledger entry. A second entry for the same attendance
// record is rejected with Conflict.
func (r *LedgerRepository) Create(ctx context.Context, entry *models.CheckoutFinancial) error {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	query := `INSERT INTO checkout_financials (id, person_id, person_category, attendance_record_id, checkout_duration, deducted_amount, checkout_rule_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.PersonID, entry.PersonCategory, entry.AttendanceRecordID,
		entry.CheckoutDuration, entry.DeductedAmount, entry.CheckoutRuleID,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "a ledger entry already exists for this attendance record")
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID loads a single ledger entry.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*models.CheckoutFinancial, error) {
	query := fmt.Sprintf(`SELECT %s FROM checkout_financials WHERE id = $1`, ledgerColumns)
	var entry models.CheckoutFinancial
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ledger entry not found")
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &entry, nil
}

// FindByAttendanceRecord returns the entry for an attendance record, or nil
// when none exists.
func (r *LedgerRepository) FindByAttendanceRecord(ctx context.Context, attendanceRecordID string) (*models.CheckoutFinancial, error) {
	query := fmt.Sprintf(`SELECT %s FROM checkout_financials WHERE attendance_record_id = $1`, ledgerColumns)
	var entry models.CheckoutFinancial
	if err := r.db.GetContext(ctx, &entry, query, attendanceRecordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find ledger entry by attendance record: %w", err)
	}
	return &entry, nil
}

// Correct updates the mutable fields of an entry.
func (r *LedgerRepository) Correct(ctx context.Context, entry *models.CheckoutFinancial) error {
	entry.UpdatedAt = time.Now().UTC()
	query := `UPDATE checkout_financials
SET checkout_duration = $1, deducted_amount = $2, checkout_rule_id = $3, updated_at = $4
WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		entry.CheckoutDuration, entry.DeductedAmount, entry.CheckoutRuleID, entry.UpdatedAt, entry.ID)
	if err != nil {
		return fmt.Errorf("correct ledger entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("correct ledger entry rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "ledger entry not found")
	}
	return nil
}

// CountByRule reports how many entries reference a rule. Used as the fast-path
// guard before rule deletion.
func (r *LedgerRepository) CountByRule(ctx context.Context, ruleID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM checkout_financials WHERE checkout_rule_id = $1`, ruleID); err != nil {
		return 0, fmt.Errorf("count ledger entries by rule: %w", err)
	}
	return count, nil
}

// List returns ledger entries matching the filter, newest first.
func (r *LedgerRepository) List(ctx context.Context, filter models.LedgerFilter) ([]models.CheckoutFinancial, int, error) {
	base := `FROM checkout_financials cf
JOIN attendance_records ar ON ar.id = cf.attendance_record_id`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PersonID != "" {
		where = append(where, fmt.Sprintf("cf.person_id = $%d", len(args)+1))
		args = append(args, filter.PersonID)
	}
	if filter.Category != nil && filter.Category.Valid() {
		where = append(where, fmt.Sprintf("cf.person_category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.LocationID != "" {
		where = append(where, fmt.Sprintf("ar.location_id = $%d", len(args)+1))
		args = append(args, filter.LocationID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("ar.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("ar.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT cf.id, cf.person_id, cf.person_category, cf.attendance_record_id,
cf.checkout_duration, cf.deducted_amount, cf.checkout_rule_id, cf.created_at, cf.updated_at
%s WHERE %s
ORDER BY cf.created_at DESC
LIMIT %d OFFSET %d`, base, whereClause, size, offset)

	var rows []models.CheckoutFinancial
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return rows, total, nil
}

// StatRows returns entries joined to their attendance dates for aggregation,
// ordered by insertion so first-encounter ranking is deterministic.
func (r *LedgerRepository) StatRows(ctx context.Context, start, end time.Time, locationID string) ([]models.LedgerStatRow, error) {
	where := []string{"ar.date >= $1", "ar.date <= $2"}
	args := []interface{}{start, end}
	if locationID != "" {
		where = append(where, fmt.Sprintf("ar.location_id = $%d", len(args)+1))
		args = append(args, locationID)
	}
	query := fmt.Sprintf(`SELECT cf.id AS entry_id, cf.person_id, cf.person_category, cf.deducted_amount, ar.date AS attendance_date
FROM checkout_financials cf
JOIN attendance_records ar ON ar.id = cf.attendance_record_id
WHERE %s
ORDER BY cf.created_at ASC`, strings.Join(where, " AND "))
	var rows []models.LedgerStatRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ledger stat rows: %w", err)
	}
	return rows, nil
}
