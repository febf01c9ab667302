package graph

import (
	"math"

	"github.com/roach88/animgraph/internal/ir"
)

const (
	bezierEpsilon       = 1e-5
	bezierNewtonSteps   = 8
	bezierMinDerivative = 1e-6
)

// bezierCurve is a cubic Bezier with endpoints (0,0) and (1,1). The
// polynomial coefficients are precomputed from the two control points.
type bezierCurve struct {
	ax, bx, cx float64
	ay, by, cy float64
}

func newBezierCurve(x1, y1, x2, y2 float64) bezierCurve {
	var c bezierCurve
	c.cx = 3 * x1
	c.bx = 3*(x2-x1) - c.cx
	c.ax = 1 - c.cx - c.bx
	c.cy = 3 * y1
	c.by = 3*(y2-y1) - c.cy
	c.ay = 1 - c.cy - c.by
	return c
}

func (c bezierCurve) sampleX(t float64) float64 { return ((c.ax*t+c.bx)*t + c.cx) * t }
func (c bezierCurve) sampleY(t float64) float64 { return ((c.ay*t+c.by)*t + c.cy) * t }
func (c bezierCurve) slopeX(t float64) float64  { return (3*c.ax*t+2*c.bx)*t + c.cx }

// solveX finds t with sampleX(t) ≈ x: Newton's method first, bisection as
// the fallback. x outside [0,1] clamps to the nearest end.
func (c bezierCurve) solveX(x, epsilon float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	t := x
	for range bezierNewtonSteps {
		dx := c.sampleX(t) - x
		if math.Abs(dx) < epsilon {
			return t
		}
		d := c.slopeX(t)
		if math.Abs(d) < bezierMinDerivative {
			break
		}
		t -= dx / d
	}

	lo, hi := 0.0, 1.0
	t = x
	for lo < hi {
		sx := c.sampleX(t)
		if math.Abs(sx-x) < epsilon {
			return t
		}
		if x > sx {
			lo = t
		} else {
			hi = t
		}
		next := (hi-lo)*0.5 + lo
		if next == t {
			// Interval exhausted at float precision.
			break
		}
		t = next
	}
	return t
}

// Ease maps x through the curve.
func (c bezierCurve) Ease(x float64) float64 {
	return c.sampleY(c.solveX(x, bezierEpsilon))
}

type bezierNode struct {
	cfg   BezierConfig
	curve bezierCurve
}

func newBezierNode(cfg BezierConfig) *bezierNode {
	return &bezierNode{cfg: cfg, curve: newBezierCurve(cfg.X1, cfg.Y1, cfg.X2, cfg.Y2)}
}

func (b *bezierNode) evaluate(env *Env) (any, error) {
	x, err := value(env, b.cfg.Input)
	if err != nil {
		return nil, err
	}
	return b.curve.Ease(ir.ToNumber(x)), nil
}
