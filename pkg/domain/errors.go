package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrTransferAlreadyCreated is returned when a transfer in status CREATED
	// is handed to the processor again
	ErrTransferAlreadyCreated = errors.New("transfer already created")
	// ErrMissingAccountMapping is returned when a transfer type requires a
	// mapped Stripe account and none is linked
	ErrMissingAccountMapping = errors.New("transfer has no account mapping")
)

// InvariantError reports a violated internal invariant. It is fatal: the
// processor never converts it into a FAILED transfer status, it propagates
// to the dispatcher.
type InvariantError struct {
	Op     string
	Reason error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %v", e.Op, e.Reason)
}

func (e *InvariantError) Unwrap() error { return e.Reason }

// NewInvariantError wraps reason as a fatal invariant violation raised by op.
func NewInvariantError(op string, reason error) *InvariantError {
	return &InvariantError{Op: op, Reason: reason}
}
