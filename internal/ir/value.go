package ir

import (
	"math"
	"strconv"
	"strings"
)

// Truthy reports whether v selects the "if" branch of a condition.
// nil, false, 0, NaN and "" are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Bool encodes a logical result as 1 or 0.
func Bool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ToNumber coerces v to a float64. Values without a numeric reading
// (nil, objects, unparsable strings) become NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case bool:
		return Bool(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	if f, ok := numeric(v); ok {
		return f
	}
	return math.NaN()
}

// IsDefined reports whether v is neither nil nor NaN.
func IsDefined(v any) bool {
	if v == nil {
		return false
	}
	if f, ok := numeric(v); ok {
		return !math.IsNaN(f)
	}
	return true
}

// Equal is strict equality: both operands must be numbers, strings, bools or
// nil of the same category. NaN is never equal to anything.
func Equal(a, b any) bool {
	fa, aNum := numeric(a)
	fb, bNum := numeric(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

// Compare orders two values. Two strings compare lexicographically; anything
// else compares numerically. ok is false when the operands are unordered
// (a NaN is involved), in which case every ordered comparison is false.
func Compare(a, b any) (cmp int, ok bool) {
	if sa, isStr := a.(string); isStr {
		if sb, isStr := b.(string); isStr {
			return strings.Compare(sa, sb), true
		}
	}
	fa, fb := ToNumber(a), ToNumber(b)
	switch {
	case math.IsNaN(fa) || math.IsNaN(fb):
		return 0, false
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	default:
		return 0, true
	}
}

// numeric extracts a float64 from any Go numeric type.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case NodeID:
		return float64(x), true
	case ViewTag:
		return float64(x), true
	}
	return 0, false
}
