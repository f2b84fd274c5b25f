package importer

import (
	"errors"
	"fmt"
)

// Error represents a failed import run.
//
// Every failure aborts the whole batch: the transaction is rolled back and
// the Error is returned to the caller unchanged. Err holds the underlying
// cause (reader, driver or parse error) for errors.Is/As.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Line is the 1-based spreadsheet row the error came from, 0 if none.
	Line int

	// Column is the header of the offending field, empty if none.
	Column string

	// Err is the underlying cause.
	Err error
}

// ErrorKind categorizes import errors.
type ErrorKind string

const (
	// KindSourceUnavailable indicates the row source could not produce data.
	KindSourceUnavailable ErrorKind = "SOURCE_UNAVAILABLE"

	// KindPersistenceFailure indicates a store operation failed.
	KindPersistenceFailure ErrorKind = "PERSISTENCE_FAILURE"

	// KindValidationFailure indicates a required field is missing or not coercible.
	KindValidationFailure ErrorKind = "VALIDATION_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Line > 0 {
		if e.Column != "" {
			msg += fmt.Sprintf(" (line %d, column %q)", e.Line, e.Column)
		} else {
			msg += fmt.Sprintf(" (line %d)", e.Line)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsSourceUnavailable returns true if err is a source-unavailable import error.
// Uses errors.As to handle wrapped errors.
func IsSourceUnavailable(err error) bool {
	return hasKind(err, KindSourceUnavailable)
}

// IsPersistenceFailure returns true if err is a persistence import error.
func IsPersistenceFailure(err error) bool {
	return hasKind(err, KindPersistenceFailure)
}

// IsValidationFailure returns true if err is a validation import error.
func IsValidationFailure(err error) bool {
	return hasKind(err, KindValidationFailure)
}

func hasKind(err error, kind ErrorKind) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}

func validationError(line int, column, message string, cause error) *Error {
	return &Error{Kind: KindValidationFailure, Message: message, Line: line, Column: column, Err: cause}
}

func persistenceError(message string, line int, cause error) *Error {
	return &Error{Kind: KindPersistenceFailure, Message: message, Line: line, Err: cause}
}
