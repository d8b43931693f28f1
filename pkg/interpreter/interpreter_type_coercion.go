package interpreter

import (
	"math"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// Coerce applies a binding's declared type to an evaluated value. It reports lossy when
// an Int declaration had to round away a fractional part. Sentinels pass through.
func Coerce(declared ast.NumberType, value runtime.Result) (result runtime.Result, lossy bool) {
	if value.IsSentinel() {
		return value, false
	}
	switch declared {
	case ast.DoubleType:
		return runtime.DoubleResult(value.Val), false
	case ast.IntType:
		if math.IsNaN(value.Val) || math.IsInf(value.Val, 0) {
			return runtime.Result{Type: ast.IntType, Val: value.Val}, false
		}
		_, frac := math.Modf(value.Val)
		return runtime.IntResult(value.Val), frac != 0
	default:
		return value, false
	}
}

func (i *Interpreter) coerce(state *evalState, declared ast.NumberType, value runtime.Result, name string, node ast.Node) runtime.Result {
	result, lossy := Coerce(declared, value)
	if lossy {
		i.report(state, newPrecisionLossWarning(node, name, value.Val, result.Val))
	}
	return result
}
