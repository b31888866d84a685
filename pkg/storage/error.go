package storage

import "errors"

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("unique constraint violated")

// ErrNotFound is returned when an entity doesn't exist in the store.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e ErrNotFound) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "entity"
	}

	if e.ID == "" {
		return kind + " not found"
	}

	return kind + " not found: " + e.ID
}

// IsNotFound reports whether err is or wraps an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
