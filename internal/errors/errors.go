package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("invalid input")
	ErrConflict    = errors.New("conflicting state")
	ErrUnavailable = errors.New("time slot is not available")
)

// ValidationError carries a client-facing message and unwraps to ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// ConflictError is a conflict with a client-facing message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

func Conflict(msg string) error {
	return &ConflictError{Message: msg}
}

// UnavailableError explains why a slot cannot be booked.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string { return e.Reason }

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func Unavailable(reason string) error {
	if reason == "" {
		reason = ErrUnavailable.Error()
	}
	return &UnavailableError{Reason: reason}
}

// NotFound wraps ErrNotFound with the name of the missing resource.
func NotFound(what string) error {
	return &notFoundError{what: what}
}

type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

// Message returns the client-facing message for known error kinds.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Message
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	var nf *notFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return ""
}
