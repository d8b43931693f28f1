package interpreter

import (
	"math"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

var unaryFuncs = map[ast.OperatorKind]func(float64) float64{
	ast.OperatorNeg:  func(v float64) float64 { return -v },
	ast.OperatorAbs:  math.Abs,
	ast.OperatorExp:  math.Exp,
	ast.OperatorSqrt: math.Sqrt,
	ast.OperatorLog:  math.Log,
	ast.OperatorExp2: math.Exp2,
	ast.OperatorCbrt: math.Cbrt,
}

var binaryFuncs = map[ast.OperatorKind]func(float64, float64) float64{
	ast.OperatorSub:       func(a, b float64) float64 { return a - b },
	ast.OperatorDiv:       func(a, b float64) float64 { return a / b },
	ast.OperatorRemainder: math.Remainder,
	ast.OperatorPow:       math.Pow,
	ast.OperatorMax:       math.Max,
	ast.OperatorMin:       math.Min,
	ast.OperatorHypot:     math.Hypot,
}

var foldFuncs = map[ast.OperatorKind]func(float64, float64) float64{
	ast.OperatorAdd:  func(a, b float64) float64 { return a + b },
	ast.OperatorMult: func(a, b float64) float64 { return a * b },
}

// applyUnary computes a unary operator. The result carries the operand's type.
func applyUnary(op ast.OperatorKind, operand runtime.Result) (runtime.Result, bool) {
	fn, ok := unaryFuncs[op]
	if !ok {
		return runtime.Sentinel(), false
	}
	if operand.IsSentinel() {
		return runtime.Sentinel(), true
	}
	return runtime.Mirror(operand, fn(operand.Val)), true
}

// applyBinary computes a binary or fold step under the promotion rule.
func applyBinary(op ast.OperatorKind, left, right runtime.Result) (runtime.Result, bool) {
	fn, ok := binaryFuncs[op]
	if !ok {
		fn, ok = foldFuncs[op]
	}
	if !ok {
		return runtime.Sentinel(), false
	}
	return runtime.Promote(left, right, fn(left.Val, right.Val)), true
}

func (i *Interpreter) evaluateUnary(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	operand, err := i.evaluate(call.Operands[0], state)
	if err != nil {
		return runtime.Sentinel(), err
	}
	result, ok := applyUnary(call.Operator, operand)
	if !ok {
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"operator %s is not implemented", call.Name))
	}
	return result, nil
}

func (i *Interpreter) evaluateBinary(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	values, err := i.evaluateOperands(call, state)
	if err != nil {
		return runtime.Sentinel(), err
	}
	left, right := values[0], values[1]
	if (call.Operator == ast.OperatorDiv || call.Operator == ast.OperatorRemainder) && right.Val == 0 {
		i.report(state, newDivisionByZeroError(call))
		return runtime.Sentinel(), nil
	}
	result, ok := applyBinary(call.Operator, left, right)
	if !ok {
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"operator %s is not implemented", call.Name))
	}
	return result, nil
}

// evaluateFold folds add/mult left to right starting from the first operand.
func (i *Interpreter) evaluateFold(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	values, err := i.evaluateOperands(call, state)
	if err != nil {
		return runtime.Sentinel(), err
	}
	acc := values[0]
	for _, next := range values[1:] {
		var ok bool
		acc, ok = applyBinary(call.Operator, acc, next)
		if !ok {
			i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
				"operator %s is not implemented", call.Name))
			return runtime.Sentinel(), nil
		}
	}
	return acc, nil
}
