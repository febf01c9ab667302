package graph

import (
	"time"

	"github.com/roach88/animgraph/internal/ir"
)

// clockNode keeps the frame loop alive while running by re-posting itself
// on every frame.
type clockNode struct {
	running bool
	gen     int // bumped by start; a callback from an older start retires
}

// start arms the per-frame callback. It is idempotent while running, and a
// stop followed by a start before the old callback fires leaves exactly one
// callback re-arming.
func (c *clockNode) start(env *Env, n *Node) {
	if c.running {
		return
	}
	c.running = true
	c.gen++
	gen := c.gen

	var tick func()
	tick = func() {
		if !c.running || c.gen != gen {
			return
		}
		if err := n.MarkUpdated(env); err != nil {
			env.Logger.Error("clock tick failed", "node_id", n.id, "error", err)
			return
		}
		env.Frames.PostOnAnimation(tick)
	}
	env.Frames.PostOnAnimation(tick)
}

// stop clears the running flag. The pending callback observes it on the next
// frame and does not re-arm.
func (c *clockNode) stop() {
	c.running = false
}

// evaluate returns the current frame timestamp in milliseconds.
func (c *clockNode) evaluate(env *Env) (any, error) {
	return float64(env.Frames.FrameTime()) / float64(time.Millisecond), nil
}

// Running reports whether a Clock node is running.
func (n *Node) Running() bool {
	c, ok := n.payload.(*clockNode)
	return ok && c.running
}

type clockOpNode struct {
	cfg ClockOpConfig
}

func (o *clockOpNode) evaluate(env *Env) (any, error) {
	target, err := env.Nodes.Node(o.cfg.Clock)
	if err != nil {
		return nil, err
	}
	clock, ok := target.payload.(*clockNode)
	if !ok {
		return nil, NewWrongKindError(target.id, KindClock, target.kind)
	}

	switch o.cfg.Op {
	case KindClockStart:
		clock.start(env, target)
	case KindClockStop:
		clock.stop()
	case KindClockTest:
		return ir.Bool(clock.running), nil
	}
	return float64(0), nil
}
