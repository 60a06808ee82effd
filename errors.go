package growbox

import (
	"errors"
	"fmt"
)

// NotFoundError reports a reference to a relay that does not exist.
// The HTTP layer maps it to a 404 response.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewRelayNotFoundError builds the NotFoundError for relay index i.
func NewRelayNotFoundError(i int) *NotFoundError {
	return &NotFoundError{Resource: fmt.Sprintf("relay %d", i)}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ValidationError reports a request value that is out of range or
// malformed. The HTTP layer maps it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}
