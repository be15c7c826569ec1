package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

type ledgerRepository interface {
	Create(ctx context.Context, entry *models.CheckoutFinancial) error
	GetByID(ctx context.Context, id string) (*models.CheckoutFinancial, error)
	FindByAttendanceRecord(ctx context.Context, attendanceRecordID string) (*models.CheckoutFinancial, error)
	Correct(ctx context.Context, entry *models.CheckoutFinancial) error
	List(ctx context.Context, filter models.LedgerFilter) ([]models.CheckoutFinancial, int, error)
}

type attendanceLookup interface {
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
}

type ruleLookup interface {
	GetByID(ctx context.Context, id string) (*models.CheckoutRule, error)
}

// LedgerService appends realized deductions. The amount is supplied by the
// caller, not derived here; the preview calculator stays advisory and the
// ledger records whatever the back office decided to charge.
type LedgerService struct {
	repo       ledgerRepository
	attendance attendanceLookup
	rules      ruleLookup
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(repo ledgerRepository, attendance attendanceLookup, rules ruleLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerCategoryValidation(validate)
	return &LedgerService{repo: repo, attendance: attendance, rules: rules, cache: cache, validator: validate, logger: logger}
}

// RecordEntryRequest describes a new ledger entry.
type RecordEntryRequest struct {
	PersonID           string   `json:"person_id" validate:"required"`
	AttendanceRecordID string   `json:"attendance_record_id" validate:"required"`
	DeductedAmount     float64  `json:"deducted_amount" validate:"gte=0"`
	CheckoutDuration   *float64 `json:"checkout_duration" validate:"omitempty,gt=0"`
	CheckoutRuleID     *string  `json:"checkout_rule_id"`
}

// CorrectEntryRequest updates the mutable fields of an existing entry. Nil
// fields are left unchanged.
type CorrectEntryRequest struct {
	DeductedAmount   *float64 `json:"deducted_amount" validate:"omitempty,gte=0"`
	CheckoutDuration *float64 `json:"checkout_duration" validate:"omitempty,gt=0"`
	CheckoutRuleID   *string  `json:"checkout_rule_id"`
}

// Record appends a ledger entry for an attendance event. A second entry for
// the same attendance record fails with Conflict.
func (s *LedgerService) Record(ctx context.Context, req RecordEntryRequest) (*models.CheckoutFinancial, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	record, err := s.attendance.GetByID(ctx, req.AttendanceRecordID)
	if err != nil {
		return nil, err
	}
	if record.PersonID != req.PersonID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance record belongs to a different person")
	}
	if req.CheckoutRuleID != nil {
		if _, err := s.rules.GetByID(ctx, *req.CheckoutRuleID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindByAttendanceRecord(ctx, req.AttendanceRecordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing ledger entry")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a ledger entry already exists for this attendance record")
	}

	entry := &models.CheckoutFinancial{
		PersonID:           req.PersonID,
		PersonCategory:     record.PersonCategory,
		AttendanceRecordID: req.AttendanceRecordID,
		CheckoutDuration:   req.CheckoutDuration,
		DeductedAmount:     decimal.NewFromFloat(req.DeductedAmount).Round(2),
		CheckoutRuleID:     req.CheckoutRuleID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.invalidateStatistics(ctx)
	s.logger.Info("ledger entry recorded",
		zap.String("entry_id", entry.ID),
		zap.String("person_id", entry.PersonID),
		zap.String("attendance_record_id", entry.AttendanceRecordID))
	return entry, nil
}

// Get loads a single ledger entry.
func (s *LedgerService) Get(ctx context.Context, id string) (*models.CheckoutFinancial, error) {
	return s.repo.GetByID(ctx, id)
}

// Correct adjusts the mutable fields of an entry. Identity fields stay fixed.
func (s *LedgerService) Correct(ctx context.Context, id string, req CorrectEntryRequest) (*models.CheckoutFinancial, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DeductedAmount != nil {
		entry.DeductedAmount = decimal.NewFromFloat(*req.DeductedAmount).Round(2)
	}
	if req.CheckoutDuration != nil {
		entry.CheckoutDuration = req.CheckoutDuration
	}
	if req.CheckoutRuleID != nil {
		if _, err := s.rules.GetByID(ctx, *req.CheckoutRuleID); err != nil {
			return nil, err
		}
		entry.CheckoutRuleID = req.CheckoutRuleID
	}
	if err := s.repo.Correct(ctx, entry); err != nil {
		return nil, err
	}
	s.invalidateStatistics(ctx)
	s.logger.Info("ledger entry corrected", zap.String("entry_id", entry.ID))
	return entry, nil
}

// LedgerListRequest filters ledger listings.
type LedgerListRequest struct {
	PersonID   string     `json:"person_id"`
	Category   *string    `json:"category" validate:"omitempty,person_category"`
	LocationID string     `json:"location_id"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// List returns paginated ledger entries.
func (s *LedgerService) List(ctx context.Context, req LedgerListRequest) ([]models.CheckoutFinancial, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must not precede date_from")
	}
	var category *models.PersonCategory
	if req.Category != nil {
		c := models.PersonCategory(*req.Category)
		category = &c
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.LedgerFilter{
		PersonID:   req.PersonID,
		Category:   category,
		LocationID: req.LocationID,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Page:       page,
		PageSize:   size,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger entries")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// invalidateStatistics drops cached aggregates after a ledger write so the
// next statistics request recomputes. Failures are logged, never surfaced.
func (s *LedgerService) invalidateStatistics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statisticsCachePattern); err != nil && s.logger != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}
