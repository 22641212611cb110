package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when a write hits a unique constraint
var ErrDuplicateKey = errors.New("duplicate key")

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// IsDuplicateKey recognises unique violations from GORM's translated error,
// a raw Postgres error or the SQLite driver message.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto repository sentinels
func translate(err error) error {
	if IsDuplicateKey(err) && !errors.Is(err, ErrDuplicateKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
