package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "person_id", "person_category", "location_id", "date", "checkin_time", "checkout_time", "status", "remarks", "created_at", "updated_at"})
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "res-1", models.PersonCategoryResident, nil, sqlmock.AnyArg(),
			sqlmock.AnyArg(), nil, models.AttendanceStatusCheckedIn, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	checkin := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	record := &models.AttendanceRecord{
		PersonID:       "res-1",
		PersonCategory: models.PersonCategoryResident,
		Date:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckinTime:    &checkin,
		Status:         models.AttendanceStatusCheckedIn,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateUniqueViolationMapsToConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.AttendanceRecord{
		PersonID:       "res-1",
		PersonCategory: models.PersonCategoryResident,
		Date:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:         models.AttendanceStatusCheckedIn,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT .* FROM attendance_records WHERE id = ").
		WithArgs("missing").
		WillReturnRows(attendanceRows())

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceRepositoryFindIncompleteNoneIsNil(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM attendance_records").
		WithArgs("res-1", models.PersonCategoryResident, date).
		WillReturnRows(attendanceRows())

	record, err := repo.FindIncomplete(context.Background(), "res-1", models.PersonCategoryResident, date)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestAttendanceRepositoryFindOpenForCheckoutNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM attendance_records").
		WithArgs("res-1", models.PersonCategoryResident, date, models.AttendanceStatusCheckedIn).
		WillReturnRows(attendanceRows())

	_, err := repo.FindOpenForCheckout(context.Background(), "res-1", models.PersonCategoryResident, date)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceRepositoryUpdateMissingRowNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE attendance_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.AttendanceRecord{ID: "missing"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	rows := attendanceRows().
		AddRow("rec-1", "res-1", "resident", nil, now, now, nil, "checked_in", nil, now, now)
	mock.ExpectQuery("SELECT .* FROM attendance_records WHERE 1=1 AND person_id = ").
		WithArgs("res-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{PersonID: "res-1"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
