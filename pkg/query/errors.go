package query

import (
	"errors"
	"fmt"
)

// ErrNothingToExport is returned by the export engine when the current
// view has no rows. It is a user-facing notice, not a failure.
var ErrNothingToExport = errors.New("no data to export")

// ValidationError reports user input that blocks an action, such as an
// empty name on save or an empty search.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
