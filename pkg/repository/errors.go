package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL integrity constraint violation codes (class 23).
const (
	CodeForeignKey = "23503"
	CodeUnique     = "23505"
	CodeCheck      = "23514"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows becomes notFoundErr and a unique violation becomes duplicateErr.
// Anything else is returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFoundErr
	case IsDuplicate(err):
		return duplicateErr
	default:
		return err
	}
}

// Violation returns the SQLSTATE code and constraint name when err carries a
// PostgreSQL error. ok is false for every other error.
func Violation(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// IsDuplicate reports whether err is a PostgreSQL unique violation.
func IsDuplicate(err error) bool {
	return hasCode(err, CodeUnique)
}

// IsForeignKey reports whether err references a row that does not exist.
func IsForeignKey(err error) bool {
	return hasCode(err, CodeForeignKey)
}

// IsCheck reports whether err is a CHECK constraint failure.
func IsCheck(err error) bool {
	return hasCode(err, CodeCheck)
}

func hasCode(err error, code string) bool {
	c, _, ok := Violation(err)
	return ok && c == code
}
