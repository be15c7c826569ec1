package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

type checkoutRuleRepository interface {
	Create(ctx context.Context, rule *models.CheckoutRule) error
	GetByID(ctx context.Context, id string) (*models.CheckoutRule, error)
	FindActive(ctx context.Context, personID string, category models.PersonCategory) (*models.CheckoutRule, error)
	ListByPerson(ctx context.Context, personID string, category models.PersonCategory) ([]models.CheckoutRule, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type ledgerLinkCounter interface {
	CountByRule(ctx context.Context, ruleID string) (int, error)
}

// CheckoutRuleService owns the single-active-rule-per-person invariant.
// Activation conflicts are rejected, never resolved by auto-deactivation.
type CheckoutRuleService struct {
	repo      checkoutRuleRepository
	ledger    ledgerLinkCounter
	persons   personDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCheckoutRuleService constructs the rule service.
func NewCheckoutRuleService(repo checkoutRuleRepository, ledger ledgerLinkCounter, persons personDirectory, validate *validator.Validate, logger *zap.Logger) *CheckoutRuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerCategoryValidation(validate)
	return &CheckoutRuleService{repo: repo, ledger: ledger, persons: persons, validator: validate, logger: logger}
}

// CreateRuleRequest describes a new deduction rule. ActiveAfterDays is stored
// and validated but not consulted during resolution; see ResolveActive.
type CreateRuleRequest struct {
	PersonID        string  `json:"person_id" validate:"required"`
	Category        string  `json:"category" validate:"required,person_category"`
	Percentage      float64 `json:"percentage" validate:"gte=0,lte=100"`
	ActiveAfterDays *int    `json:"active_after_days" validate:"omitempty,gte=0"`
	IsActive        *bool   `json:"is_active"`
}

// Create registers a rule. Creating an active rule while another is active
// for the same person fails with Conflict.
func (s *CheckoutRuleService) Create(ctx context.Context, req CreateRuleRequest) (*models.CheckoutRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	category := models.PersonCategory(strings.ToLower(req.Category))
	if _, err := s.persons.GetByID(ctx, req.PersonID, category); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if active {
		existing, err := s.repo.FindActive(ctx, req.PersonID, category)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active rule")
		}
		if existing != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "person already has an active checkout rule")
		}
	}

	rule := &models.CheckoutRule{
		PersonID:        req.PersonID,
		PersonCategory:  category,
		IsActive:        active,
		ActiveAfterDays: req.ActiveAfterDays,
		Percentage:      decimal.NewFromFloat(req.Percentage),
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("checkout rule created",
		zap.String("rule_id", rule.ID),
		zap.String("person_id", rule.PersonID),
		zap.Bool("is_active", rule.IsActive))
	return rule, nil
}

// Activate flips a rule active. Fails with Conflict when another rule is
// already active for the same person.
func (s *CheckoutRuleService) Activate(ctx context.Context, ruleID string) (*models.CheckoutRule, error) {
	rule, err := s.repo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.IsActive {
		return rule, nil
	}
	existing, err := s.repo.FindActive(ctx, rule.PersonID, rule.PersonCategory)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active rule")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "another active checkout rule exists for this person")
	}
	if err := s.repo.SetActive(ctx, ruleID, true); err != nil {
		return nil, err
	}
	rule.IsActive = true
	return rule, nil
}

// Deactivate flips a rule inactive, unconditionally.
func (s *CheckoutRuleService) Deactivate(ctx context.Context, ruleID string) (*models.CheckoutRule, error) {
	rule, err := s.repo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if !rule.IsActive {
		return rule, nil
	}
	if err := s.repo.SetActive(ctx, ruleID, false); err != nil {
		return nil, err
	}
	rule.IsActive = false
	return rule, nil
}

// Delete removes a rule unless ledger entries reference it; deactivation is
// the required alternative for rules with history.
func (s *CheckoutRuleService) Delete(ctx context.Context, ruleID string) error {
	if _, err := s.repo.GetByID(ctx, ruleID); err != nil {
		return err
	}
	links, err := s.ledger.CountByRule(ctx, ruleID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count linked ledger entries")
	}
	if links > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "checkout rule has linked ledger entries; deactivate it instead")
	}
	return s.repo.Delete(ctx, ruleID)
}

// ResolveActive returns the person's single active rule, or nil when none
// exists. active_after_days is deliberately not consulted here: every active
// rule applies regardless of elapsed days.
func (s *CheckoutRuleService) ResolveActive(ctx context.Context, personID string, category models.PersonCategory) (*models.CheckoutRule, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person category")
	}
	rule, err := s.repo.FindActive(ctx, personID, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active rule")
	}
	return rule, nil
}

// ListByPerson returns all rules for a person.
func (s *CheckoutRuleService) ListByPerson(ctx context.Context, personID string, category models.PersonCategory) ([]models.CheckoutRule, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person category")
	}
	if _, err := s.persons.GetByID(ctx, personID, category); err != nil {
		return nil, err
	}
	return s.repo.ListByPerson(ctx, personID, category)
}
