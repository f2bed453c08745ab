package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/stackdock/internal/model"
)

// Gateway is the asynchronous remote contract, one call per mutation kind.
// Implementations must be safe for concurrent use.
type Gateway interface {
	CreateStack(ctx context.Context, st model.Stack) (model.Stack, error)
	UpdateStack(ctx context.Context, st model.Stack) (model.Stack, error)
	DeleteStack(ctx context.Context, id string) error

	CreateCard(ctx context.Context, c model.Card) (model.Card, error)
	UpdateCard(ctx context.Context, c model.Card) (model.Card, error)
	DeleteCard(ctx context.Context, id string) error
	MoveCard(ctx context.Context, cardID, toStackID string) (model.Card, error)
}

// Op names a gateway call. Used in errors, logs and traces.
type Op string

const (
	OpCreateStack Op = "create_stack"
	OpUpdateStack Op = "update_stack"
	OpDeleteStack Op = "delete_stack"
	OpCreateCard  Op = "create_card"
	OpUpdateCard  Op = "update_card"
	OpDeleteCard  Op = "delete_card"
	OpMoveCard    Op = "move_card"
)

// Ops lists every gateway call in declaration order.
var Ops = []Op{OpCreateStack, OpUpdateStack, OpDeleteStack, OpCreateCard, OpUpdateCard, OpDeleteCard, OpMoveCard}

// Error is a remote rejection.
type Error struct {
	// Op is the call that failed.
	Op Op

	// Message is the human-readable reason, surfaced verbatim to the user.
	Message string

	// StatusCode is the remote status (HTTP semantics). Zero if unknown.
	StatusCode int
}

// Error implements the error interface. Only the message is returned so it
// can be shown as-is.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error with status 500.
func NewError(op Op, message string) *Error {
	return &Error{Op: op, Message: message, StatusCode: 500}
}

// IsError returns true if err is or wraps a gateway Error.
func IsError(err error) bool {
	var ge *Error
	return errors.As(err, &ge)
}

// StatusCode extracts the remote status from err, or 0.
func StatusCode(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}

// defaultMessage is the user-facing message for a failed call.
func defaultMessage(op Op) string {
	switch op {
	case OpCreateStack:
		return "Failed to create stack. Please try again."
	case OpUpdateStack:
		return "Failed to update stack. Please try again."
	case OpDeleteStack:
		return "Failed to delete stack. Please try again."
	case OpCreateCard:
		return "Failed to create card. Please try again."
	case OpUpdateCard:
		return "Failed to update card. Please try again."
	case OpDeleteCard:
		return "Failed to delete card. Please try again."
	case OpMoveCard:
		return "Failed to move card. Please try again."
	}
	return fmt.Sprintf("Failed to %s. Please try again.", op)
}
