package graph

import (
	"errors"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// GraphError is a fatal contract violation detected while mutating or
// evaluating the graph. The operation that raised it is aborted; nothing is
// retried.
//
// Fatal conditions include:
//   - Referencing a node id that does not exist
//   - A node of the wrong kind where a specific kind is required
//     (set target, event target, clock op target, attachEvent target)
//   - A duplicate (view, event) mapping
//   - Evaluating without an update context
//   - A node config that fails validation
type GraphError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the offending node, when there is one.
	NodeID ir.NodeID

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes graph errors.
type ErrorCode string

const (
	// ErrCodeNodeNotFound indicates a referenced node id is not registered.
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"

	// ErrCodeWrongKind indicates a node of another kind was required.
	ErrCodeWrongKind ErrorCode = "WRONG_KIND"

	// ErrCodeDuplicateEvent indicates a (view, event) key is already mapped.
	ErrCodeDuplicateEvent ErrorCode = "DUPLICATE_EVENT"

	// ErrCodeNoUpdateContext indicates evaluation without an update context.
	ErrCodeNoUpdateContext ErrorCode = "NO_UPDATE_CONTEXT"

	// ErrCodeInvalidConfig indicates a node config failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrCodeEventPath indicates an event argument path could not be walked.
	ErrCodeEventPath ErrorCode = "EVENT_PATH"
)

// ErrUnknownKind is returned by ParseConfig for an unrecognized node type.
// It is recoverable: the registry logs it and skips the node.
var ErrUnknownKind = errors.New("unknown node kind")

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("%s: %s (node=%d)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err wraps a GraphError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsNotFound reports whether err is a missing-node error.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNodeNotFound) }

// IsWrongKind reports whether err is a wrong-kind error.
func IsWrongKind(err error) bool { return HasCode(err, ErrCodeWrongKind) }

// NewNotFoundError creates a GraphError for a missing node id.
func NewNotFoundError(id ir.NodeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeNodeNotFound,
		Message: fmt.Sprintf("no such node %d", id),
		NodeID:  id,
	}
}

// NewWrongKindError creates a GraphError for a node of the wrong kind.
func NewWrongKindError(id ir.NodeID, want, got Kind) *GraphError {
	return &GraphError{
		Code:    ErrCodeWrongKind,
		Message: fmt.Sprintf("node must be %s, got %s", want, got),
		NodeID:  id,
		Details: map[string]string{
			"want": want.String(),
			"got":  got.String(),
		},
	}
}

func newConfigError(format string, args ...any) *GraphError {
	return &GraphError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}
