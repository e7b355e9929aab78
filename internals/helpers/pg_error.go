package helper

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation matches Postgres 23505 and GORM's translated duplicate-key error.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// MapPGError turns well-known constraint violations into an HTTP status.
func MapPGError(err error) (int, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return http.StatusConflict, "duplicate record (unique violation)"
		case pgForeignKeyViolation:
			return http.StatusBadRequest, "referenced record not found (foreign key violation)"
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return http.StatusConflict, "duplicate record (unique violation)"
	}
	return http.StatusInternalServerError, err.Error()
}
