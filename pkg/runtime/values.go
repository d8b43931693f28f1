package runtime

import (
	"fmt"
	"math"
	"strconv"

	"cilisp/interpreter-go/pkg/ast"
)

// DefaultPrecision is the number of fractional digits used when rendering Double results.
const DefaultPrecision = 2

// Result is the typed numeric outcome of evaluating a node.
type Result struct {
	Type ast.NumberType
	Val  float64
}

// Sentinel is returned in place of a value when a non-fatal error occurs.
func Sentinel() Result {
	return Result{Type: ast.IntType, Val: math.NaN()}
}

// IntResult rounds v to the nearest integer, ties away from zero.
func IntResult(v float64) Result {
	return Result{Type: ast.IntType, Val: math.Round(v)}
}

func DoubleResult(v float64) Result {
	return Result{Type: ast.DoubleType, Val: v}
}

func (r Result) IsSentinel() bool {
	return r.Type == ast.IntType && math.IsNaN(r.Val)
}

// Truthy reports whether the value is nonzero. NaN compares unequal to zero and is truthy.
func (r Result) Truthy() bool {
	return r.Val != 0
}

// Promote applies the arithmetic typing rule to a raw value computed from left and right:
// any Double operand makes the result Double, otherwise it is rounded to an Int.
func Promote(left, right Result, raw float64) Result {
	if left.Type == ast.DoubleType || right.Type == ast.DoubleType {
		return DoubleResult(raw)
	}
	return IntResult(raw)
}

// Mirror tags raw with operand's type, rounding when the operand is an Int.
func Mirror(operand Result, raw float64) Result {
	if operand.Type == ast.DoubleType {
		return DoubleResult(raw)
	}
	return IntResult(raw)
}

// Format renders the value alone: Ints without a fractional part, Doubles with precision
// fractional digits.
func (r Result) Format(precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	switch {
	case math.IsNaN(r.Val):
		return "nan"
	case math.IsInf(r.Val, 1):
		return "inf"
	case math.IsInf(r.Val, -1):
		return "-inf"
	}
	if r.Type == ast.DoubleType {
		return strconv.FormatFloat(r.Val, 'f', precision, 64)
	}
	return strconv.FormatFloat(math.Round(r.Val), 'f', 0, 64)
}

// Describe renders the type label followed by the value, e.g. "Int 5" or "Double 2.50".
func (r Result) Describe(precision int) string {
	return fmt.Sprintf("%s %s", r.Type, r.Format(precision))
}

func (r Result) String() string {
	return r.Describe(DefaultPrecision)
}
