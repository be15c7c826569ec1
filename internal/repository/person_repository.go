package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

// PersonRepository is a read-only view over the person directory owned by the
// CRUD layer. Residents expose monthly_fee, staff expose salary_amount; both
// surface here as the periodic base amount.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// GetByID loads a person from the table matching the category.
func (r *PersonRepository) GetByID(ctx context.Context, id string, category models.PersonCategory) (*models.Person, error) {
	var query string
	switch category {
	case models.PersonCategoryResident:
		query = `SELECT id, 'resident' AS category, full_name, monthly_fee AS monthly_amount, created_at
FROM residents WHERE id = $1`
	case models.PersonCategoryStaff:
		query = `SELECT id, 'staff' AS category, full_name, salary_amount AS monthly_amount, created_at
FROM staff WHERE id = $1`
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person category")
	}

	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", category))
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return &person, nil
}
