package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/animgraph/internal/ir"
)

// RuntimeError represents an error detected by the engine itself, as opposed
// to a graph contract violation raised by a node.
//
// Runtime errors include:
//   - Flush failure: an operation of a batch could not be applied
//   - Invalid operation: an operation record failed validation
//   - Stopped: the engine no longer accepts commands
//
// RuntimeError includes structured fields for diagnostics. The underlying
// graph error, if any, is available through errors.As.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// OpIndex is the position of the failing operation inside its batch,
	// or -1 when no operation is involved.
	OpIndex int

	// Op is the failing operation kind.
	Op ir.OpKind

	// Details contains additional context.
	Details map[string]string

	cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeFlushFailed indicates a batch stopped at a failing operation.
	ErrCodeFlushFailed RuntimeErrorCode = "FLUSH_FAILED"

	// ErrCodeInvalidOperation indicates an operation record is malformed.
	ErrCodeInvalidOperation RuntimeErrorCode = "INVALID_OPERATION"

	// ErrCodeStopped indicates the engine has been stopped.
	ErrCodeStopped RuntimeErrorCode = "STOPPED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.OpIndex >= 0 {
		msg = fmt.Sprintf("%s (op=%d %s)", msg, e.OpIndex, e.Op)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.cause }

// IsFlushError returns true if the error is a failed batch flush.
// Uses errors.As to handle wrapped errors.
func IsFlushError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeFlushFailed
	}
	return false
}

// IsStoppedError returns true if the engine rejected work because it stopped.
func IsStoppedError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStopped
	}
	return false
}

// NewFlushError creates a RuntimeError for the operation at index.
func NewFlushError(index int, op ir.Operation, discarded int, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeFlushFailed,
		Message: "operation batch aborted",
		OpIndex: index,
		Op:      op.Op,
		Details: map[string]string{
			"discarded": strconv.Itoa(discarded),
		},
		cause: cause,
	}
}

// NewInvalidOperationError creates a RuntimeError for a malformed operation.
func NewInvalidOperationError(op ir.Operation, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidOperation,
		Message: "operation rejected",
		OpIndex: -1,
		Op:      op.Op,
		cause:   cause,
	}
}

var errStopped = &RuntimeError{
	Code:    ErrCodeStopped,
	Message: "engine stopped",
	OpIndex: -1,
}
