package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/ir"
)

func newClockFixture(t *testing.T) *fixture {
	f := newFixture(t)
	f.create(t, 1, `{"type":"clock"}`)
	f.create(t, 2, `{"type":"clockStart","clock":1}`)
	f.create(t, 3, `{"type":"clockStop","clock":1}`)
	f.create(t, 4, `{"type":"clockTest","clock":1}`)
	return f
}

func TestClock_StartRearmsEveryFrame(t *testing.T) {
	f := newClockFixture(t)

	assert.Equal(t, 0.0, f.value(t, 2))
	assert.Equal(t, 1.0, f.value(t, 4))
	assert.True(t, f.node(t, 1).Running())
	require.Equal(t, 1, f.frames.Pending())

	for range 3 {
		assert.Equal(t, 1, f.frames.RunCallbacks())
		assert.Equal(t, []ir.NodeID{1}, f.reg.Env().Update.Dirty)
		f.settle(t)
	}
	assert.Equal(t, 1, f.frames.Pending())
}

func TestClock_StartIsIdempotent(t *testing.T) {
	f := newClockFixture(t)
	f.value(t, 2)
	f.settle(t)
	f.value(t, 2)

	assert.Equal(t, 1, f.frames.Pending())
}

func TestClock_StopQuiescesAfterOneFrame(t *testing.T) {
	f := newClockFixture(t)
	f.value(t, 2)
	f.value(t, 3)

	assert.Equal(t, 0.0, f.value(t, 4))
	assert.False(t, f.node(t, 1).Running())

	// The pending callback still fires once, sees the flag and stops.
	assert.Equal(t, 1, f.frames.RunCallbacks())
	assert.Empty(t, f.reg.Env().Update.Dirty)
	assert.Equal(t, 0, f.frames.Pending())
}

func TestClock_StopThenStartKeepsOneCallback(t *testing.T) {
	f := newClockFixture(t)
	f.value(t, 2)
	f.value(t, 3)
	f.settle(t)
	f.value(t, 2)
	require.True(t, f.node(t, 1).Running())
	require.Equal(t, 2, f.frames.Pending())

	// The callback from the first start retires; only the new one re-arms.
	assert.Equal(t, 2, f.frames.RunCallbacks())
	assert.Equal(t, []ir.NodeID{1}, f.reg.Env().Update.Dirty)
	assert.Equal(t, 1, f.frames.Pending())

	for range 3 {
		f.settle(t)
		assert.Equal(t, 1, f.frames.RunCallbacks())
		assert.Equal(t, []ir.NodeID{1}, f.reg.Env().Update.Dirty)
		assert.Equal(t, 1, f.frames.Pending())
	}
}

func TestClock_EvaluatesFrameTimeInMillis(t *testing.T) {
	f := newClockFixture(t)
	f.frames.Advance(1500 * time.Microsecond)
	assert.Equal(t, 1.5, f.value(t, 1))

	f.settle(t)
	f.frames.Advance(16 * time.Millisecond)
	assert.Equal(t, 17.5, f.value(t, 1))
}

func TestClockOp_TargetMustBeClock(t *testing.T) {
	f := newFixture(t)
	f.create(t, 1, `{"type":"value","value":0}`)
	f.create(t, 2, `{"type":"clockStart","clock":1}`)

	_, err := f.reg.Value(2)
	assert.True(t, IsWrongKind(err))
}
