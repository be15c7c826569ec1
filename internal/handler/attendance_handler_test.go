package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

type fakeAttendanceSrv struct {
	record   *models.AttendanceRecord
	err      error
	lastDecl struct {
		id     string
		reason *string
	}
}

func (f *fakeAttendanceSrv) CheckIn(context.Context, service.CheckInRequest) (*models.AttendanceRecord, error) {
	return f.record, f.err
}

func (f *fakeAttendanceSrv) RequestCheckout(context.Context, service.CheckoutRequest) (*models.AttendanceRecord, error) {
	return f.record, f.err
}

func (f *fakeAttendanceSrv) Approve(context.Context, string) (*models.AttendanceRecord, error) {
	return f.record, f.err
}

func (f *fakeAttendanceSrv) Decline(_ context.Context, id string, reason *string) (*models.AttendanceRecord, error) {
	f.lastDecl.id = id
	f.lastDecl.reason = reason
	return f.record, f.err
}

func (f *fakeAttendanceSrv) Get(context.Context, string) (*models.AttendanceRecord, error) {
	return f.record, f.err
}

func (f *fakeAttendanceSrv) List(context.Context, service.AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.AttendanceRecord{*f.record}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 1}, nil
}

func sampleRecord() *models.AttendanceRecord {
	checkin := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return &models.AttendanceRecord{
		ID:             "rec-1",
		PersonID:       "res-1",
		PersonCategory: models.PersonCategoryResident,
		Date:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckinTime:    &checkin,
		Status:         models.AttendanceStatusCheckedIn,
	}
}

func TestAttendanceHandlerCheckInCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{record: sampleRecord()})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"person_id":"res-1","category":"resident"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CheckIn(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.AttendanceRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "rec-1", envelope.Data.ID)
}

func TestAttendanceHandlerCheckInMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{record: sampleRecord()})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CheckIn(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerCheckInConflictStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{
		err: appErrors.Clone(appErrors.ErrConflict, "an incomplete attendance record already exists for this person today"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"person_id":"res-1","category":"resident"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/check-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CheckIn(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, envelope.Error.Code)
}

func TestAttendanceHandlerDeclinePassesReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAttendanceSrv{record: sampleRecord()}
	handler := NewAttendanceHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}
	body := `{"reason":"coverage needed"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/rec-1/decline", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Decline(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rec-1", srv.lastDecl.id)
	require.NotNil(t, srv.lastDecl.reason)
	assert.Equal(t, "coverage needed", *srv.lastDecl.reason)
}

func TestAttendanceHandlerDeclineWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAttendanceSrv{record: sampleRecord()}
	handler := NewAttendanceHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/rec-1/decline", nil)

	handler.Decline(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, srv.lastDecl.reason)
}

func TestAttendanceHandlerListRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{record: sampleRecord()})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance?date_from=March-1", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerListReturnsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{record: sampleRecord()})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance?person_id=res-1", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}
