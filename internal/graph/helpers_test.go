package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/testutil"
)

type fixture struct {
	reg    *Registry
	frames *testutil.ManualFrames
	host   *testutil.RecordingHost
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	frames := testutil.NewManualFrames()
	host := testutil.NewRecordingHost()
	reg := NewRegistry(Host{Frames: frames, Views: host, Events: host})
	return &fixture{reg: reg, frames: frames, host: host}
}

func (f *fixture) create(t *testing.T, id ir.NodeID, config string) {
	t.Helper()
	require.NoError(t, f.reg.CreateNode(id, json.RawMessage(config)))
}

func (f *fixture) connect(t *testing.T, parent, child ir.NodeID) {
	t.Helper()
	require.NoError(t, f.reg.ConnectNodes(parent, child))
}

func (f *fixture) value(t *testing.T, id ir.NodeID) any {
	t.Helper()
	v, err := f.reg.Value(id)
	require.NoError(t, err)
	return v
}

func (f *fixture) node(t *testing.T, id ir.NodeID) *Node {
	t.Helper()
	n, err := f.reg.Node(id)
	require.NoError(t, err)
	return n
}

// settle runs a pass and forgets the effects it produced.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	_, err := f.reg.RunPropUpdates()
	require.NoError(t, err)
	f.host.Reset()
}
