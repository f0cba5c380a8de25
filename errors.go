package blogadmin

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// Upload faults. Handlers treat both as validation errors: the write is
// blocked and the message goes back to the user, never a 500.
var (
	ErrFileTooLarge    = errors.New("file size too large")
	ErrUnsupportedType = errors.New("invalid file type")
)

// ValidationError carries one or more user-facing messages for input that
// fails a business rule. It is always surfaced as a 400-class response.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// AsValidationError unwraps err into a *ValidationError if possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// isConstraintViolation reports whether err comes from a SQLite constraint
// (e.g. a UNIQUE clash). Callers translate these into validation errors
// instead of server faults.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint")
}
