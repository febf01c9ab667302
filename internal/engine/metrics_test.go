package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeFrame(FrameReport{}, 0.001)
		m.eventQueued()
		m.eventDropped()
		m.operationApplied(ir.OpCreateNode, nil)
		m.effect("view")
		m.setNodes(nil)
	})
}

func TestMetrics_RecordsEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := newHarness(t, WithMetrics(m))

	h.buildOpacityGraph(t, "0.5")
	h.e.ConnectNodes(2, 42)
	require.Error(t, h.e.FlushOperations())

	h.e.DispatchEvent(ir.NewInboundEvent(10, "onPress", nil))
	require.True(t, h.e.Tick(frame))

	assert.Equal(t, 5.0, promtest.ToFloat64(m.operations.WithLabelValues(string(ir.OpConnectNodes), "ok"))+
		promtest.ToFloat64(m.operations.WithLabelValues(string(ir.OpCreateNode), "ok"))+
		promtest.ToFloat64(m.operations.WithLabelValues(string(ir.OpConnectNodeToView), "ok"))+
		promtest.ToFloat64(m.operations.WithLabelValues(string(ir.OpConfigureNativeProps), "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.operations.WithLabelValues(string(ir.OpConnectNodes), "error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.events.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.frames))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.effects.WithLabelValues("view")))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.nodes))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.epoch))
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.eventQueued()
	m.errors.WithLabelValues("propagation").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "animgraph_router_events_total")
	assert.Contains(t, names, "animgraph_scheduler_errors_total")
	assert.Contains(t, names, "animgraph_scheduler_frames_total")
}
