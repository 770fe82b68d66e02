package store

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
)

// Code classifies a contract error so callers can react without parsing
// message text.
type Code string

const (
	CodeValidation        Code = "VALIDATION"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeStore             Code = "STORE_ERROR"
)

// Error is a contract error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func errValidation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func errConflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func errTransition(current, next string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot change status from %s to %s", current, next),
	}
}

// ErrorCode returns the contract code carried by err. Errors without a code
// are persistence failures and classify as CodeStore.
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStore
}

// SQLITE_CONSTRAINT_UNIQUE, the extended result code for unique index
// violations.
const sqliteConstraintUnique = 2067

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqliteConstraintUnique
}
