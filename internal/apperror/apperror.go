// Package apperror defines the errors the service layer hands to callers.
// Every error carries a message that is safe to show to the end user.
package apperror

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStore        = errors.New("store failure")
)

// GenericMessage is shown for store failures instead of the cause.
const GenericMessage = "Something went wrong. Please try again."

// Error is a user-facing failure.
type Error struct {
	Kind    error  // one of the Err* kinds
	Message string // shown to the user verbatim
	Field   string // optional: offending input field
	Cause   error  // optional: underlying error, never shown
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NotFound reports a missing or hidden resource.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Validation reports unusable input for field.
func Validation(field, message string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Field: field}
}

// Conflict reports a uniqueness violation detected before writing.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Unauthorized reports a caller that does not own the target resource.
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// Store wraps a collaborator failure behind the generic message.
func Store(cause error) *Error {
	return &Error{Kind: ErrStore, Message: GenericMessage, Cause: cause}
}

// Message returns the user-facing message of err, or the generic message
// when err is not an *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return GenericMessage
}
