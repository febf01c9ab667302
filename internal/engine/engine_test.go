package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
	"github.com/roach88/animgraph/internal/testutil"
)

const frame = 16 * time.Millisecond

type harness struct {
	e    *Engine
	host *testutil.RecordingHost
	log  *EffectLog
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	host := testutil.NewRecordingHost()
	log := NewEffectLog()
	base := []Option{
		WithViewUpdater(host),
		WithEventEmitter(host),
		WithObserver(log),
		WithIDGenerator(NewFixedGenerator("run-1")),
	}
	return &harness{e: New(append(base, opts...)...), host: host, log: log}
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func (h *harness) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, h.e.FlushOperations())
}

// buildOpacityGraph wires value 1 into props 2 on view 10.
func (h *harness) buildOpacityGraph(t *testing.T, initial string) {
	t.Helper()
	h.e.ConfigureNativeProps("opacity")
	h.e.CreateNode(1, raw(`{"type":"value","value":`+initial+`}`))
	h.e.CreateNode(2, raw(`{"type":"props","props":{"opacity":1}}`))
	h.e.ConnectNodes(2, 1)
	h.e.ConnectNodeToView(2, 10, "RCTView")
	h.flush(t)
}

func TestEngine_New(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "run-1", h.e.RunID())
	assert.Equal(t, 0, h.e.Registry().Len())
	assert.Equal(t, int64(1), h.e.Registry().Epoch())
	assert.Equal(t, int64(0), h.e.Frame())
	assert.False(t, h.e.Scheduler().Armed())
}

func TestEngine_NewDefaults(t *testing.T) {
	e := New()
	assert.NotEmpty(t, e.RunID())

	e.CreateNode(1, raw(`{"type":"value","value":1}`))
	e.CreateNode(2, raw(`{"type":"props","props":{"opacity":1}}`))
	e.ConnectNodes(2, 1)
	e.ConnectNodeToView(2, 10, "RCTView")
	require.NoError(t, e.FlushOperations())
	assert.True(t, e.Tick(frame))
}

func TestEngine_ValueReachesView(t *testing.T) {
	h := newHarness(t)
	h.buildOpacityGraph(t, "0.5")

	assert.Empty(t, h.host.Views(), "flush must not propagate")
	require.True(t, h.e.Scheduler().Armed())

	require.True(t, h.e.Tick(frame))
	assert.Equal(t, []testutil.ViewUpdate{
		{Tag: 10, Name: "RCTView", Props: map[string]any{"opacity": 0.5}},
	}, h.host.Views())
	assert.Equal(t, int64(2), h.e.Registry().Epoch())
	assert.False(t, h.e.Scheduler().Armed())
}

func TestEngine_TickWithoutFrame(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.e.Tick(frame))
	assert.Empty(t, h.log.Frames())
}

func TestEngine_EventDrivesView(t *testing.T) {
	h := newHarness(t)
	h.buildOpacityGraph(t, "0")
	h.e.CreateNode(3, raw(`{"type":"event","argMapping":[["nativeEvent","x",1]]}`))
	h.e.AttachEvent(10, "onScroll", 3)
	h.flush(t)
	require.True(t, h.e.Tick(frame))
	h.host.Reset()

	ok := h.e.DispatchEvent(ir.NewInboundEvent(10, "onScroll", map[string]any{
		"nativeEvent": map[string]any{"x": 0.7},
	}))
	require.True(t, ok)
	require.True(t, h.e.Scheduler().Armed())

	require.True(t, h.e.Tick(2 * frame))
	assert.Equal(t, []testutil.ViewUpdate{
		{Tag: 10, Name: "RCTView", Props: map[string]any{"opacity": 0.7}},
	}, h.host.Views())

	frames := h.log.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 1, frames[1].Events)
	assert.NoError(t, frames[1].EventErr)
}

func TestEngine_EventRoutesByViewAndName(t *testing.T) {
	h := newHarness(t)
	h.e.CreateNode(1, raw(`{"type":"value","value":0}`))
	h.e.CreateNode(2, raw(`{"type":"value","value":0}`))
	h.e.CreateNode(3, raw(`{"type":"event","argMapping":[["x",1]]}`))
	h.e.CreateNode(4, raw(`{"type":"event","argMapping":[["x",2]]}`))
	h.e.AttachEvent(10, "onScroll", 3)
	h.e.AttachEvent(11, "onPress", 4)
	h.flush(t)

	require.True(t, h.e.DispatchEvent(ir.NewInboundEvent(10, "onScroll", map[string]any{"x": 5.0})))
	h.e.Tick(frame)

	v1, err := h.e.Registry().Value(1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v1)
	v2, err := h.e.Registry().Value(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v2)

	h.e.AttachEvent(10, "onScroll", 4)
	err = h.e.FlushOperations()
	require.Error(t, err)
	assert.True(t, IsFlushError(err))
	assert.True(t, graph.HasCode(err, graph.ErrCodeDuplicateEvent), "got %v", err)
}

func TestEngine_UnmappedEventDropped(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.e.DispatchEvent(ir.NewInboundEvent(10, "onScroll", nil)))
	assert.False(t, h.e.Scheduler().Armed())
}

func TestEngine_ClockKeepsFramesComing(t *testing.T) {
	h := newHarness(t)
	h.e.ConfigureNativeProps("t", "running")
	h.e.CreateNode(1, raw(`{"type":"clock"}`))
	h.e.CreateNode(2, raw(`{"type":"clockStart","clock":1}`))
	h.e.CreateNode(3, raw(`{"type":"props","props":{"running":2,"t":1}}`))
	h.e.ConnectNodes(3, 1)
	h.e.ConnectNodeToView(3, 7, "RCTView")
	h.flush(t)

	for i := 1; i <= 3; i++ {
		require.True(t, h.e.Tick(time.Duration(i)*frame), "frame %d", i)
	}

	views := h.host.Views()
	require.Len(t, views, 3)
	assert.Equal(t, 16.0, views[0].Props["t"])
	assert.Equal(t, 32.0, views[1].Props["t"])
	assert.Equal(t, 48.0, views[2].Props["t"])
	assert.True(t, h.e.Scheduler().Armed())

	clock, err := h.e.Registry().Node(1)
	require.NoError(t, err)
	assert.True(t, clock.Running())
}

func TestEngine_EffectsStampedWithFrame(t *testing.T) {
	h := newHarness(t)
	h.buildOpacityGraph(t, "0.25")
	require.True(t, h.e.Tick(frame))

	effects := h.log.Effects()
	require.Len(t, effects, 1)
	assert.Equal(t, Effect{
		Frame:    1,
		Kind:     EffectView,
		ViewTag:  10,
		ViewName: "RCTView",
		Payload:  map[string]any{"opacity": 0.25},
	}, effects[0])
}

func TestEngine_RunAppliesSubmittedWork(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.e.Run(ctx, time.Millisecond) }()

	require.NoError(t, h.e.Submit(func(e *Engine) {
		e.ConfigureNativeProps("opacity")
		e.CreateNode(1, raw(`{"type":"value","value":0.9}`))
		e.CreateNode(2, raw(`{"type":"props","props":{"opacity":1}}`))
		e.ConnectNodes(2, 1)
		e.ConnectNodeToView(2, 10, "RCTView")
		if err := e.FlushOperations(); err != nil {
			t.Errorf("flush: %v", err)
		}
	}))

	require.Eventually(t, func() bool { return len(h.host.Views()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, map[string]any{"opacity": 0.9}, h.host.Views()[0].Props)

	h.e.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.e.Run(ctx, 0) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, IsStoppedError(h.e.Submit(func(*Engine) {})))
}

func TestEngine_SubmitAfterStop(t *testing.T) {
	h := newHarness(t)
	h.e.Stop()

	err := h.e.Submit(func(*Engine) {})
	require.Error(t, err)
	assert.True(t, IsStoppedError(err))
}

type countingSource struct {
	requests int
	cb       FrameCallback
}

func (s *countingSource) RequestFrame(cb FrameCallback) {
	s.requests++
	s.cb = cb
}

func TestEngine_CustomFrameSource(t *testing.T) {
	src := &countingSource{}
	h := newHarness(t, WithFrameSource(src))
	h.buildOpacityGraph(t, "1")

	assert.False(t, h.e.Tick(frame), "Tick only drives the built-in source")
	require.Equal(t, 1, src.requests)

	src.cb(frame)
	assert.Len(t, h.host.Views(), 1)
}
