package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records map[string]*models.AttendanceRecord
	nextID  int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]*models.AttendanceRecord{}}
}

func (f *fakeAttendanceRepo) Create(_ context.Context, record *models.AttendanceRecord) error {
	for _, existing := range f.records {
		if existing.PersonID == record.PersonID && existing.PersonCategory == record.PersonCategory &&
			existing.Date.Equal(record.Date) && existing.Incomplete() {
			return appErrors.Clone(appErrors.ErrConflict, "an incomplete attendance record already exists for this person today")
		}
	}
	f.nextID++
	record.ID = fmt.Sprintf("rec-%d", f.nextID)
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*models.AttendanceRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}
	copied := *record
	return &copied, nil
}

func (f *fakeAttendanceRepo) FindIncomplete(_ context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error) {
	for _, record := range f.records {
		if record.PersonID == personID && record.PersonCategory == category && record.Date.Equal(date) && record.Incomplete() {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) FindOpenForCheckout(_ context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error) {
	for _, record := range f.records {
		if record.PersonID == personID && record.PersonCategory == category && record.Date.Equal(date) &&
			record.Status == models.AttendanceStatusCheckedIn && record.CheckinTime != nil && record.CheckoutTime == nil {
			copied := *record
			return &copied, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no open check-in found")
}

func (f *fakeAttendanceRepo) Update(_ context.Context, record *models.AttendanceRecord) error {
	if _, ok := f.records[record.ID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	rows := make([]models.AttendanceRecord, 0, len(f.records))
	for _, record := range f.records {
		rows = append(rows, *record)
	}
	return rows, len(rows), nil
}

func testPersons() *fakePersonDirectory {
	return &fakePersonDirectory{persons: map[string]*models.Person{
		"resident/res-1": {ID: "res-1", Category: models.PersonCategoryResident, FullName: "Asha Verma", MonthlyAmount: decimal.NewFromInt(30000)},
		"staff/stf-1":    {ID: "stf-1", Category: models.PersonCategoryStaff, FullName: "Ravi Kumar", MonthlyAmount: decimal.NewFromInt(45000)},
	}}
}

func newTestAttendanceService(repo *fakeAttendanceRepo, now time.Time) *AttendanceService {
	svc := NewAttendanceService(repo, testPersons(), nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestAttendanceCheckIn_NewRecordIsCheckedIn(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)

	record, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusCheckedIn, record.Status)
	require.NotNil(t, record.CheckinTime)
	assert.Equal(t, now, *record.CheckinTime)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Nil(t, record.CheckoutTime)
}

func TestAttendanceCheckIn_SecondIncompleteSameDayConflicts(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestAttendanceService(repo, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC))

	_, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident"})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAttendanceCheckIn_BothTimestampsStartPending(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestAttendanceService(repo, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC))

	checkin := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	checkout := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	record, err := svc.CheckIn(context.Background(), CheckInRequest{
		PersonID:     "stf-1",
		Category:     "staff",
		CheckinTime:  &checkin,
		CheckoutTime: &checkout,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPending, record.Status)
}

func TestAttendanceCheckIn_CheckoutBeforeCheckinRejected(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestAttendanceService(repo, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC))

	checkin := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	checkout := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err := svc.CheckIn(context.Background(), CheckInRequest{
		PersonID:     "res-1",
		Category:     "resident",
		CheckinTime:  &checkin,
		CheckoutTime: &checkout,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAttendanceCheckIn_UnknownPersonNotFound(t *testing.T) {
	svc := newTestAttendanceService(newFakeAttendanceRepo(), time.Now().UTC())

	_, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "ghost", Category: "resident"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceRequestCheckout_MovesToPending(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)

	_, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident"})
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(6 * time.Hour) }
	record, err := svc.RequestCheckout(context.Background(), CheckoutRequest{PersonID: "res-1", Category: "resident"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPending, record.Status)
	require.NotNil(t, record.CheckoutTime)
	assert.Equal(t, now.Add(6*time.Hour), *record.CheckoutTime)
}

func TestAttendanceRequestCheckout_NoOpenCheckinNotFound(t *testing.T) {
	svc := newTestAttendanceService(newFakeAttendanceRepo(), time.Now().UTC())

	_, err := svc.RequestCheckout(context.Background(), CheckoutRequest{PersonID: "res-1", Category: "resident"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func pendingRecord(t *testing.T, svc *AttendanceService, personID, category string) *models.AttendanceRecord {
	t.Helper()
	_, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: personID, Category: category})
	require.NoError(t, err)
	checkout := svc.now().UTC().Add(time.Hour)
	record, err := svc.RequestCheckout(context.Background(), CheckoutRequest{PersonID: personID, Category: category, CheckoutTime: &checkout})
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusPending, record.Status)
	return record
}

func TestAttendanceApprove_ResidentLandsOnApproved(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "res-1", "resident")

	approved, err := svc.Approve(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusApproved, approved.Status)
}

func TestAttendanceApprove_StaffLandsOnCheckedOut(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "stf-1", "staff")

	approved, err := svc.Approve(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusCheckedOut, approved.Status)
}

func TestAttendanceApprove_NonPendingConflicts(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "res-1", "resident")

	_, err := svc.Approve(context.Background(), record.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), record.ID)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAttendanceApprove_SetsMissingCheckoutTime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)

	checkin := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	record, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident", CheckinTime: &checkin})
	require.NoError(t, err)

	// Force pending without a checkout time.
	stored := repo.records[record.ID]
	stored.Status = models.AttendanceStatusPending
	stored.CheckoutTime = nil

	approvedAt := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return approvedAt }

	approved, err := svc.Approve(context.Background(), record.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.CheckoutTime)
	assert.Equal(t, approvedAt, *approved.CheckoutTime)
}

func TestAttendanceDecline_ResidentKeepsCheckoutTime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "res-1", "resident")

	declined, err := svc.Decline(context.Background(), record.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusDeclined, declined.Status)
	assert.NotNil(t, declined.CheckoutTime)
}

func TestAttendanceDecline_StaffRevertsToCheckedIn(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "stf-1", "staff")

	reason := "roster coverage needed"
	declined, err := svc.Decline(context.Background(), record.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusCheckedIn, declined.Status)
	assert.Nil(t, declined.CheckoutTime)
	require.NotNil(t, declined.Remarks)
	assert.Contains(t, *declined.Remarks, reason)
}

func TestAttendanceDecline_StaffAppendsToExistingRemarks(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)
	record := pendingRecord(t, svc, "stf-1", "staff")

	existing := "late arrival"
	repo.records[record.ID].Remarks = &existing

	reason := "shift not covered"
	declined, err := svc.Decline(context.Background(), record.ID, &reason)
	require.NoError(t, err)
	require.NotNil(t, declined.Remarks)
	assert.Equal(t, "late arrival; shift not covered", *declined.Remarks)
}

func TestAttendanceDecline_NonPendingConflicts(t *testing.T) {
	repo := newFakeAttendanceRepo()
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	svc := newTestAttendanceService(repo, now)

	record, err := svc.CheckIn(context.Background(), CheckInRequest{PersonID: "res-1", Category: "resident"})
	require.NoError(t, err)

	_, err = svc.Decline(context.Background(), record.ID, nil)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAttendanceList_RejectsInvertedDateRange(t *testing.T) {
	svc := newTestAttendanceService(newFakeAttendanceRepo(), time.Now().UTC())

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -5)
	_, _, err := svc.List(context.Background(), AttendanceListRequest{DateFrom: &from, DateTo: &to})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
