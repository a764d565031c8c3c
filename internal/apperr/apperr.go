// internal/apperr/apperr.go
//
// User-facing error kinds.
//
// Context
// -------
// Adept distinguishes two classes of failure.  A *validation* failure is the
// user's to fix: the request layer shows the message verbatim, rolls back
// the enclosing transaction, and answers 422.  Everything else is a system
// failure, logged and answered with 500.
//
// Callers construct validation failures with Validation() and test for them
// with IsValidation().  The concrete type is exported so handlers can read
// the offending field names when they want to highlight inputs.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package apperr

import (
	"errors"
	"net/http"
)

// ValidationError is a user-facing rejection.  Message is already
// translated; Fields lists the technical field names involved, if any.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation returns a *ValidationError carrying msg and optional fields.
func Validation(msg string, fields ...string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// IsValidation reports whether err (or anything it wraps) is a
// *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Status maps err to the HTTP status the request layer should answer with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
