package ir

import (
	"encoding/json"
	"fmt"
)

// OpKind names a structural mutation of the graph.
type OpKind string

const (
	OpCreateNode             OpKind = "createNode"
	OpDropNode               OpKind = "dropNode"
	OpConnectNodes           OpKind = "connectNodes"
	OpDisconnectNodes        OpKind = "disconnectNodes"
	OpConnectNodeToView      OpKind = "connectNodeToView"
	OpDisconnectNodeFromView OpKind = "disconnectNodeFromView"
	OpAttachEvent            OpKind = "attachEvent"
	OpDetachEvent            OpKind = "detachEvent"
	OpConfigureNativeProps   OpKind = "configureNativeProps"
)

// Operation is one buffered structural mutation. Operations are collected by
// the host and applied as one atomic block at the host mutation boundary.
//
// For connect/disconnect, ParentID is the dependent: after
// connectNodes(parent, child) a change of child propagates to parent.
type Operation struct {
	Op          OpKind          `json:"op"`
	NodeID      NodeID          `json:"node_id,omitempty"`
	ParentID    NodeID          `json:"parent_id,omitempty"`
	ChildID     NodeID          `json:"child_id,omitempty"`
	ViewTag     ViewTag         `json:"view_tag,omitempty"`
	ViewName    string          `json:"view_name,omitempty"`
	EventName   string          `json:"event_name,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
	NativeProps []string        `json:"native_props,omitempty"`
}

// CreateNode builds a createNode operation.
func CreateNode(id NodeID, config json.RawMessage) Operation {
	return Operation{Op: OpCreateNode, NodeID: id, Config: config}
}

// DropNode builds a dropNode operation.
func DropNode(id NodeID) Operation {
	return Operation{Op: OpDropNode, NodeID: id}
}

// ConnectNodes builds a connectNodes operation.
func ConnectNodes(parent, child NodeID) Operation {
	return Operation{Op: OpConnectNodes, ParentID: parent, ChildID: child}
}

// DisconnectNodes builds a disconnectNodes operation.
func DisconnectNodes(parent, child NodeID) Operation {
	return Operation{Op: OpDisconnectNodes, ParentID: parent, ChildID: child}
}

// ConnectNodeToView builds a connectNodeToView operation.
func ConnectNodeToView(id NodeID, tag ViewTag, viewName string) Operation {
	return Operation{Op: OpConnectNodeToView, NodeID: id, ViewTag: tag, ViewName: viewName}
}

// DisconnectNodeFromView builds a disconnectNodeFromView operation.
func DisconnectNodeFromView(id NodeID, tag ViewTag) Operation {
	return Operation{Op: OpDisconnectNodeFromView, NodeID: id, ViewTag: tag}
}

// AttachEvent builds an attachEvent operation.
func AttachEvent(tag ViewTag, eventName string, id NodeID) Operation {
	return Operation{Op: OpAttachEvent, ViewTag: tag, EventName: eventName, NodeID: id}
}

// DetachEvent builds a detachEvent operation.
func DetachEvent(tag ViewTag, eventName string, id NodeID) Operation {
	return Operation{Op: OpDetachEvent, ViewTag: tag, EventName: eventName, NodeID: id}
}

// ConfigureNativeProps builds a configureNativeProps operation.
func ConfigureNativeProps(names ...string) Operation {
	return Operation{Op: OpConfigureNativeProps, NativeProps: names}
}

// Validate checks that the operation kind is known and that the fields it
// needs are present. Node existence is checked when the operation is applied.
func (op Operation) Validate() error {
	switch op.Op {
	case OpCreateNode:
		if len(op.Config) == 0 {
			return fmt.Errorf("%s %d: config is required", op.Op, op.NodeID)
		}
	case OpAttachEvent, OpDetachEvent:
		if op.EventName == "" {
			return fmt.Errorf("%s %d: event name is required", op.Op, op.NodeID)
		}
	case OpDropNode, OpConnectNodes, OpDisconnectNodes,
		OpConnectNodeToView, OpDisconnectNodeFromView, OpConfigureNativeProps:
	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}
	return nil
}
