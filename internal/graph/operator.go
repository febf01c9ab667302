package graph

import (
	"fmt"
	"math"

	"github.com/roach88/animgraph/internal/ir"
)

// operator evaluates a node's inputs. Inputs are passed as ids so that
// short-circuiting operators can leave later inputs unevaluated.
type operator struct {
	minArgs int
	maxArgs int // 0 means unbounded
	apply   func(env *Env, input []ir.NodeID) (any, error)
}

func (o operator) arity() string {
	switch {
	case o.maxArgs == 0:
		return fmt.Sprintf("at least %d", o.minArgs)
	case o.minArgs == o.maxArgs:
		return fmt.Sprintf("exactly %d", o.minArgs)
	}
	return fmt.Sprintf("%d to %d", o.minArgs, o.maxArgs)
}

var operators = map[string]operator{
	// arithmetic
	"add":      reduce(func(a, b float64) float64 { return a + b }),
	"sub":      reduce(func(a, b float64) float64 { return a - b }),
	"multiply": reduce(func(a, b float64) float64 { return a * b }),
	"divide":   reduce(func(a, b float64) float64 { return a / b }),
	"pow":      reduce(math.Pow),
	"modulo":   reduce(math.Mod),
	"sqrt":     single(func(a any) any { return math.Sqrt(ir.ToNumber(a)) }),
	"sin":      single(func(a any) any { return math.Sin(ir.ToNumber(a)) }),
	"cos":      single(func(a any) any { return math.Cos(ir.ToNumber(a)) }),
	"exp":      single(func(a any) any { return math.Exp(ir.ToNumber(a)) }),

	// logical
	"and":     {minArgs: 1, apply: logical(false)},
	"or":      {minArgs: 1, apply: logical(true)},
	"not":     single(func(a any) any { return ir.Bool(!ir.Truthy(a)) }),
	"defined": single(func(a any) any { return ir.Bool(ir.IsDefined(a)) }),

	// comparing
	"lessThan":    compare(func(c int) bool { return c < 0 }),
	"greaterThan": compare(func(c int) bool { return c > 0 }),
	"lessOrEq":    compare(func(c int) bool { return c <= 0 }),
	"greaterOrEq": compare(func(c int) bool { return c >= 0 }),
	"eq":          infix(func(a, b any) any { return ir.Bool(ir.Equal(a, b)) }),
	"neq":         infix(func(a, b any) any { return ir.Bool(!ir.Equal(a, b)) }),
}

// reduce left-folds fn over all inputs, seeded with the first.
func reduce(fn func(a, b float64) float64) operator {
	return operator{minArgs: 1, apply: func(env *Env, input []ir.NodeID) (any, error) {
		first, err := value(env, input[0])
		if err != nil {
			return nil, err
		}
		acc := ir.ToNumber(first)
		for _, id := range input[1:] {
			v, err := value(env, id)
			if err != nil {
				return nil, err
			}
			acc = fn(acc, ir.ToNumber(v))
		}
		return acc, nil
	}}
}

// single applies fn to the first input only.
func single(fn func(a any) any) operator {
	return operator{minArgs: 1, apply: func(env *Env, input []ir.NodeID) (any, error) {
		a, err := value(env, input[0])
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}}
}

func infix(fn func(a, b any) any) operator {
	return operator{minArgs: 2, maxArgs: 2, apply: func(env *Env, input []ir.NodeID) (any, error) {
		ab, err := values(env, input)
		if err != nil {
			return nil, err
		}
		return fn(ab[0], ab[1]), nil
	}}
}

// compare is an ordering comparison. Unordered operands compare false.
func compare(pred func(c int) bool) operator {
	return infix(func(a, b any) any {
		c, ok := ir.Compare(a, b)
		return ir.Bool(ok && pred(c))
	})
}

// logical evaluates inputs left to right until the running result equals
// stopOn, leaving the rest unevaluated.
func logical(stopOn bool) func(env *Env, input []ir.NodeID) (any, error) {
	return func(env *Env, input []ir.NodeID) (any, error) {
		res := !stopOn
		for _, id := range input {
			v, err := value(env, id)
			if err != nil {
				return nil, err
			}
			if res = ir.Truthy(v); res == stopOn {
				break
			}
		}
		return ir.Bool(res), nil
	}
}

type operatorNode struct {
	cfg OperatorConfig
	op  *operator
}

func newOperatorNode(cfg OperatorConfig) *operatorNode {
	n := &operatorNode{cfg: cfg}
	if op, ok := operators[cfg.Op]; ok {
		n.op = &op
	}
	return n
}

// evaluate yields nil for an unknown operator.
func (o *operatorNode) evaluate(env *Env) (any, error) {
	if o.op == nil {
		return nil, nil
	}
	return o.op.apply(env, o.cfg.Input)
}

// IsOperator reports whether name is a known operator.
func IsOperator(name string) bool {
	_, ok := operators[name]
	return ok
}
