package repositories

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrCascadeIncomplete indicates the primary record was deleted but some
	// dependent records could not be removed.
	ErrCascadeIncomplete = errors.New("dependent records not fully removed")
)

// wrapError maps driver errors onto the package sentinels and annotates the rest.
func wrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
