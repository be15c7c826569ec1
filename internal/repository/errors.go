package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes the repositories care about. Uniqueness and foreign-key
// constraints are the real arbiters for the check-then-act invariants; the
// application-level checks are only a fast path.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}
