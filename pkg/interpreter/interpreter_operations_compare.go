package interpreter

import (
	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// compareValues evaluates equal/less/greater. Any NaN operand compares false.
func compareValues(op ast.OperatorKind, left, right runtime.Result) (bool, bool) {
	switch op {
	case ast.OperatorEqual:
		return left.Val == right.Val, true
	case ast.OperatorLess:
		return left.Val < right.Val, true
	case ast.OperatorGreater:
		return left.Val > right.Val, true
	default:
		return false, false
	}
}

func (i *Interpreter) evaluateComparison(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	values, err := i.evaluateOperands(call, state)
	if err != nil {
		return runtime.Sentinel(), err
	}
	holds, ok := compareValues(call.Operator, values[0], values[1])
	if !ok {
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"operator %s is not implemented", call.Name))
		return runtime.Sentinel(), nil
	}
	if holds {
		return runtime.IntResult(1), nil
	}
	return runtime.IntResult(0), nil
}
