// Package repository defines the persistence gateway shared by every
// storage backend, plus the sentinel errors handlers use to tell failure
// scenarios apart. ErrNotFound means a lookup by id matched no row,
// ErrInvalidInput means the request could not be expressed against the
// schema, and ErrConstraint means storage rejected a write because of a
// foreign key or uniqueness rule.
package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConstraint   = errors.New("constraint violation")

	// ErrConflict is returned when a write cannot proceed because of the
	// current state of the row. Handlers translate it into HTTP 409.
	ErrConflict = errors.New("conflict")
)

// ErrNoFieldsToUpdate rejects an update that sets nothing. It is returned
// before storage is touched.
var ErrNoFieldsToUpdate = fmt.Errorf("%w: no fields to update", ErrInvalidInput)

// ErrCallAlreadyEnded is returned when a call is terminated twice.
var ErrCallAlreadyEnded = fmt.Errorf("call already ended: %w", ErrConflict)

// Entity-specific lookups. All of them match errors.Is(err, ErrNotFound).
var (
	ErrGroupNotFound    = fmt.Errorf("group %w", ErrNotFound)
	ErrMemberNotFound   = fmt.Errorf("member %w", ErrNotFound)
	ErrCallNotFound     = fmt.Errorf("call %w", ErrNotFound)
	ErrFestivalNotFound = fmt.Errorf("festival %w", ErrNotFound)
	ErrArtistNotFound   = fmt.Errorf("artist %w", ErrNotFound)
	ErrCatalogNotFound  = fmt.Errorf("catalog entry %w", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("review %w", ErrNotFound)
)

// Constraint wraps a storage-level rejection so that it matches
// ErrConstraint while keeping the driver's message.
func Constraint(detail string) error {
	return fmt.Errorf("%w: %s", ErrConstraint, detail)
}

// InvalidInput wraps a storage-level type or format rejection.
func InvalidInput(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, detail)
}
