package service

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Kerhoff/lomaya/internal/models"
)

const (
	uniqueViolation     = "unique_violation"
	foreignKeyViolation = "foreign_key_violation"
)

// translateDBError maps constraint violations reported by PostgreSQL onto
// domain errors. Other errors are returned unchanged.
func translateDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case uniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrConflict)
	case foreignKeyViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrNotFound)
	}
	return err
}
