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

func ruleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "person_id", "person_category", "is_active", "active_after_days", "percentage", "created_at", "updated_at"})
}

func TestCheckoutRuleRepositoryCreateDuplicateActiveMapsToConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCheckoutRuleRepository(db)

	mock.ExpectExec("INSERT INTO checkout_rules").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.CheckoutRule{
		PersonID:       "res-1",
		PersonCategory: models.PersonCategoryResident,
		IsActive:       true,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCheckoutRuleRepositoryFindActiveNoneIsNil(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCheckoutRuleRepository(db)

	mock.ExpectQuery("SELECT .* FROM checkout_rules").
		WithArgs("res-1", models.PersonCategoryResident).
		WillReturnRows(ruleRows())

	rule, err := repo.FindActive(context.Background(), "res-1", models.PersonCategoryResident)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestCheckoutRuleRepositoryFindActiveReturnsRule(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCheckoutRuleRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM checkout_rules").
		WithArgs("res-1", models.PersonCategoryResident).
		WillReturnRows(ruleRows().AddRow("rule-1", "res-1", "resident", true, nil, "12.5", now, now))

	rule, err := repo.FindActive(context.Background(), "res-1", models.PersonCategoryResident)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.True(t, rule.IsActive)
	assert.Equal(t, "12.5", rule.Percentage.String())
}

func TestCheckoutRuleRepositorySetActiveConflictOnSecondActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCheckoutRuleRepository(db)

	mock.ExpectExec("UPDATE checkout_rules").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.SetActive(context.Background(), "rule-2", true)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCheckoutRuleRepositoryDeleteWithLedgerLinksMapsToConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCheckoutRuleRepository(db)

	mock.ExpectExec("DELETE FROM checkout_rules").
		WithArgs("rule-1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), "rule-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
