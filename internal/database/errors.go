package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert or update violates a
	// uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidPhone is returned for numbers outside the mobile range.
	ErrInvalidPhone = errors.New("phone is not a valid mobile number")
)

// isDuplicate reports whether err is a uniqueness violation from either
// supported driver.
func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}

	return false
}
