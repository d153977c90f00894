package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"pahla_backend/internals/features/nominations/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// StatusConflictError is returned when a status change finds the row in a
// status it may not leave from.
type StatusConflictError struct {
	Current model.NominationStatus
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("nomination is %s", e.Current)
}

// IsUniqueViolation recognises Postgres 23505 and gorm's translated error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
