package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPersistence       = errors.New("persistence error")
	ErrNotFound          = errors.New("application not found")
	ErrMalformedEvent    = errors.New("malformed payment event")

	// ErrConflict is returned by a Store when the row version moved between
	// read and write. Callers see it wrapped in ErrPersistence.
	ErrConflict = errors.New("application was modified concurrently")
)

// TransitionError names the state the record is in and the rule that was violated.
type TransitionError struct {
	Field  string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.From == "" && e.To == "" {
		return e.Reason
	}
	return fmt.Sprintf("cannot change %s from %s to %s: %s", e.Field, e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func persistenceErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
