package shopapp

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Upload rejection reasons. They are wrapped in a ValidationError carrying
// the client-facing message.
var (
	ErrNoFile              = errors.New("no file provided")
	ErrPathRequired        = errors.New("path is required")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrFileTooLarge        = errors.New("file too large")
	ErrTooManyFiles        = errors.New("too many files")
	ErrInvalidPath         = errors.New("invalid path")
	ErrNotADirectory       = errors.New("not a directory")
	ErrNotAFile            = errors.New("not a file")
)

// ErrUnexpectedResult is returned when a stored procedure answers with a
// result shape its caller cannot interpret.
var ErrUnexpectedResult = errors.New("unexpected procedure result")

// ValidationError is a rejected request. Message is safe to show to the
// client; Reason identifies the rule that failed.
type ValidationError struct {
	Reason  error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Reason == nil {
		return e.Message
	}
	return e.Reason.Error() + ": " + e.Message
}

// Unwrap exposes both ErrInvalidInput and the specific reason to errors.Is.
func (e *ValidationError) Unwrap() []error {
	if e.Reason == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Reason}
}

// Invalid builds a ValidationError.
func Invalid(reason error, message string) error {
	return &ValidationError{Reason: reason, Message: message}
}

// ClientMessage returns the client-facing message of a ValidationError
// found in err's chain, or fallback.
func ClientMessage(err error, fallback string) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.Message != "" {
		return vErr.Message
	}
	return fallback
}
