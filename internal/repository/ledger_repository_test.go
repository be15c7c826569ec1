package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

func TestLedgerRepositoryCreateDuplicateAttendanceMapsToConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	mock.ExpectExec("INSERT INTO checkout_financials").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.CheckoutFinancial{
		PersonID:           "res-1",
		PersonCategory:     models.PersonCategoryResident,
		AttendanceRecordID: "att-1",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLedgerRepositoryFindByAttendanceRecordNoneIsNil(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	mock.ExpectQuery("SELECT .* FROM checkout_financials WHERE attendance_record_id = ").
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	entry, err := repo.FindByAttendanceRecord(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLedgerRepositoryCorrectMissingRowNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	mock.ExpectExec("UPDATE checkout_financials").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Correct(context.Background(), &models.CheckoutFinancial{ID: "missing"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLedgerRepositoryCountByRule(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("rule-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByRule(context.Background(), "rule-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLedgerRepositoryStatRowsJoinsAttendanceDates(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"entry_id", "person_id", "person_category", "deducted_amount", "attendance_date"}).
		AddRow("entry-1", "res-1", "resident", "150.00", start.AddDate(0, 0, 9)).
		AddRow("entry-2", "stf-1", "staff", "90.50", start.AddDate(0, 0, 12))
	mock.ExpectQuery("SELECT cf.id AS entry_id").
		WithArgs(start, end).
		WillReturnRows(rows)

	statRows, err := repo.StatRows(context.Background(), start, end, "")
	require.NoError(t, err)
	require.Len(t, statRows, 2)
	assert.Equal(t, "res-1", statRows[0].PersonID)
	assert.Equal(t, "150", statRows[0].DeductedAmount.String())
}

func TestLedgerRepositoryStatRowsFiltersLocation(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT cf.id AS entry_id").
		WithArgs(start, end, "loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "person_id", "person_category", "deducted_amount", "attendance_date"}))

	statRows, err := repo.StatRows(context.Background(), start, end, "loc-1")
	require.NoError(t, err)
	assert.Empty(t, statRows)
}
