package demand

import "errors"

var (
	// ErrNotFound means the referenced demand does not exist for the company.
	ErrNotFound = errors.New("demand not found")

	// ErrConflict means a compare-and-swap status write lost to a concurrent
	// writer. Callers should re-fetch and retry with fresh state.
	ErrConflict = errors.New("demand status changed concurrently")

	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError carries a human-readable message that is surfaced verbatim
// to the end actor. No state is mutated when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
