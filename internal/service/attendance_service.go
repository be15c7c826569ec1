package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	FindIncomplete(ctx context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error)
	FindOpenForCheckout(ctx context.Context, personID string, category models.PersonCategory, date time.Time) (*models.AttendanceRecord, error)
	Update(ctx context.Context, record *models.AttendanceRecord) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type personDirectory interface {
	GetByID(ctx context.Context, id string, category models.PersonCategory) (*models.Person, error)
}

// AttendanceService drives the daily presence lifecycle: check-in, checkout
// request, and the admin approve/decline review. All transitions are
// externally triggered; nothing moves with the passage of time.
type AttendanceService struct {
	repo      attendanceRepository
	persons   personDirectory
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, persons personDirectory, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerCategoryValidation(validate)
	return &AttendanceService{repo: repo, persons: persons, validator: validate, logger: logger, now: time.Now}
}

// registerCategoryValidation installs the person_category tag used by request
// structs across the service layer. Registration is idempotent.
func registerCategoryValidation(v *validator.Validate) {
	_ = v.RegisterValidation("person_category", func(fl validator.FieldLevel) bool {
		return models.PersonCategory(strings.ToLower(fl.Field().String())).Valid()
	})
}

// CheckInRequest describes a check-in. Supplying both timestamps at creation
// signals a checkout that still needs review, so the record starts pending.
type CheckInRequest struct {
	PersonID     string     `json:"person_id" validate:"required"`
	Category     string     `json:"category" validate:"required,person_category"`
	LocationID   *string    `json:"location_id"`
	CheckinTime  *time.Time `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time"`
}

// CheckoutRequest asks to close today's open check-in.
type CheckoutRequest struct {
	PersonID     string     `json:"person_id" validate:"required"`
	Category     string     `json:"category" validate:"required,person_category"`
	CheckoutTime *time.Time `json:"checkout_time"`
}

// AttendanceListRequest filters attendance listings.
type AttendanceListRequest struct {
	PersonID   string     `json:"person_id"`
	Category   *string    `json:"category" validate:"omitempty,person_category"`
	LocationID string     `json:"location_id"`
	Status     *string    `json:"status"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

// CheckIn creates today's attendance record for a person. It rejects with
// Conflict while an incomplete record exists for the same person and date.
func (s *AttendanceService) CheckIn(ctx context.Context, req CheckInRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	category := models.PersonCategory(strings.ToLower(req.Category))
	if _, err := s.persons.GetByID(ctx, req.PersonID, category); err != nil {
		return nil, err
	}

	checkin := req.CheckinTime
	if checkin == nil {
		t := s.now().UTC()
		checkin = &t
	}
	date := dateOnly(*checkin)

	existing, err := s.repo.FindIncomplete(ctx, req.PersonID, category, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an incomplete attendance record already exists for this person today")
	}

	status := models.AttendanceStatusCheckedIn
	if req.CheckoutTime != nil {
		if !req.CheckoutTime.After(*checkin) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "checkout time must be after check-in time")
		}
		status = models.AttendanceStatusPending
	}

	record := &models.AttendanceRecord{
		PersonID:       req.PersonID,
		PersonCategory: category,
		LocationID:     req.LocationID,
		Date:           date,
		CheckinTime:    checkin,
		CheckoutTime:   req.CheckoutTime,
		Status:         status,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("attendance check-in",
		zap.String("person_id", req.PersonID),
		zap.String("category", string(category)),
		zap.String("status", string(status)))
	return record, nil
}

// RequestCheckout marks today's open check-in as awaiting review. NotFound is
// returned when the person has no open check-in today.
func (s *AttendanceService) RequestCheckout(ctx context.Context, req CheckoutRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	category := models.PersonCategory(strings.ToLower(req.Category))

	checkout := req.CheckoutTime
	if checkout == nil {
		t := s.now().UTC()
		checkout = &t
	}
	date := dateOnly(*checkout)

	record, err := s.repo.FindOpenForCheckout(ctx, req.PersonID, category, date)
	if err != nil {
		return nil, err
	}
	if record.CheckinTime != nil && !checkout.After(*record.CheckinTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "checkout time must be after check-in time")
	}

	record.CheckoutTime = checkout
	record.Status = models.AttendanceStatusPending
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Approve finalises a pending checkout. Resident records land on approved,
// staff records on checked_out; the asymmetry mirrors how the back office has
// always reported the two populations and must not be unified silently.
func (s *AttendanceService) Approve(ctx context.Context, recordID string) (*models.AttendanceRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.AttendanceStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot approve a record in status %q", record.Status))
	}

	if record.CheckoutTime == nil {
		t := s.now().UTC()
		record.CheckoutTime = &t
	}
	switch record.PersonCategory {
	case models.PersonCategoryStaff:
		record.Status = models.AttendanceStatusCheckedOut
	default:
		record.Status = models.AttendanceStatusApproved
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("checkout approved",
		zap.String("record_id", record.ID),
		zap.String("category", string(record.PersonCategory)),
		zap.String("status", string(record.Status)))
	return record, nil
}

// Decline rejects a pending checkout. For staff the request is fully undone:
// the record reverts to checked_in, the checkout time is cleared and the
// reason is appended to remarks. For residents the record lands on declined
// and keeps its checkout time.
func (s *AttendanceService) Decline(ctx context.Context, recordID string, reason *string) (*models.AttendanceRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.AttendanceStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot decline a record in status %q", record.Status))
	}

	switch record.PersonCategory {
	case models.PersonCategoryStaff:
		record.Status = models.AttendanceStatusCheckedIn
		record.CheckoutTime = nil
		if reason != nil && *reason != "" {
			record.Remarks = appendRemark(record.Remarks, *reason)
		}
	default:
		record.Status = models.AttendanceStatusDeclined
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("checkout declined",
		zap.String("record_id", record.ID),
		zap.String("category", string(record.PersonCategory)),
		zap.String("status", string(record.Status)))
	return record, nil
}

// Get loads a single attendance record.
func (s *AttendanceService) Get(ctx context.Context, recordID string) (*models.AttendanceRecord, error) {
	return s.repo.GetByID(ctx, recordID)
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	var category *models.PersonCategory
	if req.Category != nil {
		c := models.PersonCategory(strings.ToLower(*req.Category))
		category = &c
	}
	var status *models.AttendanceStatus
	if req.Status != nil {
		st := models.AttendanceStatus(strings.ToLower(*req.Status))
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
		}
		status = &st
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must not precede date_from")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.AttendanceFilter{
		PersonID:   req.PersonID,
		Category:   category,
		LocationID: req.LocationID,
		Status:     status,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Page:       page,
		PageSize:   size,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rows, pagination, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func appendRemark(existing *string, remark string) *string {
	if existing == nil || *existing == "" {
		return &remark
	}
	combined := *existing + "; " + remark
	return &combined
}
