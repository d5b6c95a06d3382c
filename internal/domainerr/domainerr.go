// Package domainerr provides the engine's error taxonomy.
// Errors carry a machine-readable Code so batch callers can classify failures
// without matching on message text.
package domainerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that carries no domain code.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidState means the entity's current state forbids the operation.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeInsufficientStock means a ledger decrement would go negative.
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"

	// CodeEmptyRoster means an expedition has no members.
	CodeEmptyRoster Code = "EMPTY_ROSTER"

	// CodeAllMembersDead means every member of an expedition is dead.
	CodeAllMembersDead Code = "ALL_MEMBERS_DEAD"

	// CodeNotFound means the entity vanished or never existed.
	CodeNotFound Code = "NOT_FOUND"

	// CodeValidation means malformed input.
	CodeValidation Code = "VALIDATION"
)

// Sentinels usable with errors.Is.
var (
	ErrInvalidState      = &Error{Code: CodeInvalidState}
	ErrInsufficientStock = &Error{Code: CodeInsufficientStock}
	ErrEmptyRoster       = &Error{Code: CodeEmptyRoster}
	ErrAllMembersDead    = &Error{Code: CodeAllMembersDead}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrValidation        = &Error{Code: CodeValidation}
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so the package sentinels
// work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
// Returns nil if err is nil.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
