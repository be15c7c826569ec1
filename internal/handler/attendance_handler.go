package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/internal/service"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, req service.CheckInRequest) (*models.AttendanceRecord, error)
	RequestCheckout(ctx context.Context, req service.CheckoutRequest) (*models.AttendanceRecord, error)
	Approve(ctx context.Context, recordID string) (*models.AttendanceRecord, error)
	Decline(ctx context.Context, recordID string, reason *string) (*models.AttendanceRecord, error)
	Get(ctx context.Context, recordID string) (*models.AttendanceRecord, error)
	List(ctx context.Context, req service.AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error)
}

// AttendanceHandler wires the attendance state machine to HTTP endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// CheckIn godoc
// @Summary Check a person in for the day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.CheckInRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.service.CheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// RequestCheckout godoc
// @Summary Request checkout for today's open check-in
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) RequestCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.service.RequestCheckout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Approve godoc
// @Summary Approve a pending checkout
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/approve [post]
func (h *AttendanceHandler) Approve(c *gin.Context) {
	record, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

type declineRequest struct {
	Reason *string `json:"reason"`
}

// Decline godoc
// @Summary Decline a pending checkout
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance record ID"
// @Param payload body declineRequest false "Decline reason"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/decline [post]
func (h *AttendanceHandler) Decline(c *gin.Context) {
	var req declineRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
			return
		}
	}
	record, err := h.service.Decline(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Get godoc
// @Summary Fetch a single attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param person_id query string false "Person ID"
// @Param category query string false "Person category (resident|staff)"
// @Param location_id query string false "Location ID"
// @Param status query string false "Attendance status"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	req := service.AttendanceListRequest{
		PersonID:   strings.TrimSpace(c.Query("person_id")),
		LocationID: strings.TrimSpace(c.Query("location_id")),
		SortBy:     strings.TrimSpace(c.Query("sort_by")),
		SortOrder:  strings.TrimSpace(c.Query("sort_order")),
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		req.Category = &category
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		req.Status = &status
	}
	var ok bool
	if req.DateFrom, ok = parseDateQuery(c, "date_from"); !ok {
		return
	}
	if req.DateTo, ok = parseDateQuery(c, "date_to"); !ok {
		return
	}
	req.Page = parseIntQuery(c, "page", 1)
	req.PageSize = parseIntQuery(c, "page_size", 50)

	records, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// parseDateQuery reads an optional YYYY-MM-DD query value. On malformed input
// it writes the error response and reports false.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" format, expected YYYY-MM-DD"))
		return nil, false
	}
	return &parsed, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
