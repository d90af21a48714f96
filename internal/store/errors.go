package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a unique constraint,
// e.g. a duplicate membership or a taken club name.
var ErrConflict = errors.New("already exists")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapPQError translates Postgres constraint violations into the
// store's sentinel errors and leaves everything else untouched.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrConflict
		case pqForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
