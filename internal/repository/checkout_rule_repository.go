package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

// CheckoutRuleRepository handles persistence for checkout deduction rules.
// A partial unique index on person_id WHERE is_active enforces the
// single-active-rule invariant.
type CheckoutRuleRepository struct {
	db *sqlx.DB
}

// NewCheckoutRuleRepository constructs the repository.
func NewCheckoutRuleRepository(db *sqlx.DB) *CheckoutRuleRepository {
	return &CheckoutRuleRepository{db: db}
}

const ruleColumns = `id, person_id, person_category, is_active, active_after_days, percentage, created_at, updated_at`

// Create inserts a rule. Inserting a second active rule for the same person
// trips the partial unique index and is reported as Conflict.
func (r *CheckoutRuleRepository) Create(ctx context.Context, rule *models.CheckoutRule) error {
	now := time.Now().UTC()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now
	query := `INSERT INTO checkout_rules (id, person_id, person_category, is_active, active_after_days, percentage, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.PersonID, rule.PersonCategory, rule.IsActive,
		rule.ActiveAfterDays, rule.Percentage, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "person already has an active checkout rule")
		}
		return fmt.Errorf("insert checkout rule: %w", err)
	}
	return nil
}

// GetByID loads a single rule.
func (r *CheckoutRuleRepository) GetByID(ctx context.Context, id string) (*models.CheckoutRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM checkout_rules WHERE id = $1`, ruleColumns)
	var rule models.CheckoutRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "checkout rule not found")
		}
		return nil, fmt.Errorf("get checkout rule: %w", err)
	}
	return &rule, nil
}

// FindActive resolves the single active rule for a person. Returns nil when
// the person has no active rule; callers must treat that as a distinct result,
// not an error.
func (r *CheckoutRuleRepository) FindActive(ctx context.Context, personID string, category models.PersonCategory) (*models.CheckoutRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM checkout_rules
WHERE person_id = $1 AND person_category = $2 AND is_active = TRUE`, ruleColumns)
	var rule models.CheckoutRule
	if err := r.db.GetContext(ctx, &rule, query, personID, category); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active checkout rule: %w", err)
	}
	return &rule, nil
}

// ListByPerson returns all rules for a person, newest first.
func (r *CheckoutRuleRepository) ListByPerson(ctx context.Context, personID string, category models.PersonCategory) ([]models.CheckoutRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM checkout_rules
WHERE person_id = $1 AND person_category = $2
ORDER BY created_at DESC`, ruleColumns)
	var rules []models.CheckoutRule
	if err := r.db.SelectContext(ctx, &rules, query, personID, category); err != nil {
		return nil, fmt.Errorf("list checkout rules: %w", err)
	}
	return rules, nil
}

// SetActive flips the activation flag. Activating while another rule for the
// same person is active trips the partial unique index.
func (r *CheckoutRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE checkout_rules SET is_active = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "another active checkout rule exists for this person")
		}
		return fmt.Errorf("set checkout rule active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set checkout rule active rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "checkout rule not found")
	}
	return nil
}

// Delete removes a rule. The ledger's checkout_rule_id foreign key is
// RESTRICT, so a rule with linked entries is rejected even if the caller's
// count check raced.
func (r *CheckoutRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM checkout_rules WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "checkout rule has linked ledger entries; deactivate it instead")
		}
		return fmt.Errorf("delete checkout rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete checkout rule rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "checkout rule not found")
	}
	return nil
}
