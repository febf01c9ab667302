package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		op      Operation
		wantErr bool
	}{
		{"create", CreateNode(1, json.RawMessage(`{"type":"value","value":1}`)), false},
		{"create without config", Operation{Op: OpCreateNode, NodeID: 1}, true},
		{"drop", DropNode(1), false},
		{"connect", ConnectNodes(2, 1), false},
		{"view", ConnectNodeToView(3, 10, "View"), false},
		{"attach", AttachEvent(10, "onScroll", 4), false},
		{"attach without name", AttachEvent(10, "", 4), true},
		{"detach without name", DetachEvent(10, "", 4), true},
		{"native props", ConfigureNativeProps("opacity"), false},
		{"unknown", Operation{Op: "explode"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOperation_JSON(t *testing.T) {
	var op Operation
	err := json.Unmarshal([]byte(`{"op":"connectNodes","parent_id":2,"child_id":1}`), &op)
	require.NoError(t, err)
	assert.Equal(t, ConnectNodes(2, 1), op)
}
