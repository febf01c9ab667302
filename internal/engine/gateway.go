package engine

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/animgraph/internal/ir"
)

// The host-facing mutation methods below only buffer operations. Nothing
// touches the graph until FlushOperations, which the host calls at its
// mutation boundary.

// CreateNode buffers a createNode operation.
func (e *Engine) CreateNode(id ir.NodeID, config json.RawMessage) {
	e.buffer(ir.CreateNode(id, config))
}

// DropNode buffers a dropNode operation.
func (e *Engine) DropNode(id ir.NodeID) {
	e.buffer(ir.DropNode(id))
}

// ConnectNodes buffers a connectNodes operation: parent becomes a dependent
// of child.
func (e *Engine) ConnectNodes(parent, child ir.NodeID) {
	e.buffer(ir.ConnectNodes(parent, child))
}

// DisconnectNodes buffers a disconnectNodes operation.
func (e *Engine) DisconnectNodes(parent, child ir.NodeID) {
	e.buffer(ir.DisconnectNodes(parent, child))
}

// ConnectNodeToView buffers a connectNodeToView operation.
func (e *Engine) ConnectNodeToView(id ir.NodeID, tag ir.ViewTag, viewName string) {
	e.buffer(ir.ConnectNodeToView(id, tag, viewName))
}

// DisconnectNodeFromView buffers a disconnectNodeFromView operation.
func (e *Engine) DisconnectNodeFromView(id ir.NodeID, tag ir.ViewTag) {
	e.buffer(ir.DisconnectNodeFromView(id, tag))
}

// AttachEvent buffers an attachEvent operation.
func (e *Engine) AttachEvent(tag ir.ViewTag, eventName string, id ir.NodeID) {
	e.buffer(ir.AttachEvent(tag, eventName, id))
}

// DetachEvent buffers a detachEvent operation.
func (e *Engine) DetachEvent(tag ir.ViewTag, eventName string, id ir.NodeID) {
	e.buffer(ir.DetachEvent(tag, eventName, id))
}

// ConfigureNativeProps buffers a configureNativeProps operation.
func (e *Engine) ConfigureNativeProps(names ...string) {
	e.buffer(ir.ConfigureNativeProps(names...))
}

// Enqueue validates op and appends it to the pending batch.
func (e *Engine) Enqueue(op ir.Operation) error {
	if err := op.Validate(); err != nil {
		return NewInvalidOperationError(op, err)
	}
	e.buffer(op)
	return nil
}

// EnqueueAll validates every operation before buffering any of them.
func (e *Engine) EnqueueAll(ops []ir.Operation) error {
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return NewInvalidOperationError(op, err)
		}
	}
	for _, op := range ops {
		e.buffer(op)
	}
	return nil
}

// PendingOperations returns the number of buffered operations.
func (e *Engine) PendingOperations() int {
	return len(e.pending)
}

func (e *Engine) buffer(op ir.Operation) {
	e.pending = append(e.pending, op)
}

// FlushOperations applies the pending batch in order.
//
// The batch is taken and the buffer cleared before anything is applied, so
// operations buffered while flushing belong to the next batch. No
// propagation runs during a flush. The first failing operation aborts the
// batch; it is returned as a FLUSH_FAILED RuntimeError wrapping the cause,
// and the operations after it are discarded.
func (e *Engine) FlushOperations() error {
	batch := e.pending
	e.pending = nil
	if len(batch) == 0 {
		return nil
	}

	for i, op := range batch {
		err := e.apply(op)
		e.metrics.operationApplied(op.Op, err)
		if err != nil {
			discarded := len(batch) - i - 1
			e.logger.Error("operation failed",
				"op", string(op.Op),
				"index", i,
				"node_id", op.NodeID,
				"discarded", discarded,
				"error", err,
			)
			e.metrics.setNodes(e.registry)
			return NewFlushError(i, op, discarded, err)
		}
	}
	e.metrics.setNodes(e.registry)
	e.logger.Debug("flushed operations", "count", len(batch))
	return nil
}

func (e *Engine) apply(op ir.Operation) error {
	reg := e.registry
	switch op.Op {
	case ir.OpCreateNode:
		return reg.CreateNode(op.NodeID, op.Config)
	case ir.OpDropNode:
		reg.DropNode(op.NodeID)
		return nil
	case ir.OpConnectNodes:
		return reg.ConnectNodes(op.ParentID, op.ChildID)
	case ir.OpDisconnectNodes:
		return reg.DisconnectNodes(op.ParentID, op.ChildID)
	case ir.OpConnectNodeToView:
		return reg.ConnectNodeToView(op.NodeID, op.ViewTag, op.ViewName)
	case ir.OpDisconnectNodeFromView:
		return reg.DisconnectNodeFromView(op.NodeID, op.ViewTag)
	case ir.OpAttachEvent:
		node, err := reg.Node(op.NodeID)
		if err != nil {
			return err
		}
		return e.router.Attach(op.ViewTag, op.EventName, node)
	case ir.OpDetachEvent:
		e.router.Detach(op.ViewTag, op.EventName)
		return nil
	case ir.OpConfigureNativeProps:
		reg.ConfigureNativeProps(op.NativeProps)
		return nil
	}
	return fmt.Errorf("unknown operation %q", op.Op)
}
