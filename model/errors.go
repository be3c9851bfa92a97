package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the db, controller and web layers. Callers wrap these
// with context and test for them with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrNotFound         = errors.New("not found")
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	ErrPredictionClosed = fmt.Errorf("%w: predictions are closed for this match", ErrValidation)
)

// Invalid returns an error wrapping ErrValidation with the given message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
