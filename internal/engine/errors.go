package engine

import (
	"errors"
	"fmt"
)

// Error is a request the engine refused before applying anything.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID is the record the request referred to, if any.
	ID string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeUnknownStack indicates a card would reference a missing stack.
	ErrCodeUnknownStack ErrorCode = "UNKNOWN_STACK"

	// ErrCodeInvalidSnapshot indicates a snapshot offered for restore breaks
	// the entity invariants.
	ErrCodeInvalidSnapshot ErrorCode = "INVALID_SNAPSHOT"
)

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrUnknownStack    = &Error{Code: ErrCodeUnknownStack}
	ErrInvalidSnapshot = &Error{Code: ErrCodeInvalidSnapshot}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsUnknownStack returns true if err is or wraps an unknown-stack error.
func IsUnknownStack(err error) bool {
	return errors.Is(err, ErrUnknownStack)
}

// IsInvalidSnapshot returns true if err is or wraps an invalid-snapshot error.
func IsInvalidSnapshot(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot)
}

func newUnknownStackError(id string) *Error {
	return &Error{
		Code:    ErrCodeUnknownStack,
		Message: "stack does not exist",
		ID:      id,
	}
}

func newInvalidSnapshotError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidSnapshot,
		Message: fmt.Sprintf(format, args...),
	}
}
