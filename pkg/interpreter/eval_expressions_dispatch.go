package interpreter

import (
	"fmt"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluate(node ast.Node, state *evalState) (runtime.Result, error) {
	if node == nil {
		return runtime.Sentinel(), nil
	}
	if state.depth >= i.maxDepth {
		i.report(state, newRuntimeError(KindRecursionLimitExceeded, node, ast.Describe(node),
			"recursion limit of %d exceeded at %s", i.maxDepth, ast.Describe(node)))
		return runtime.Sentinel(), nil
	}
	state.depth++
	defer func() { state.depth-- }()

	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.Result{Type: n.Type, Val: n.Value}, nil
	case *ast.VariableReference:
		return i.evaluateVariable(n, state)
	case *ast.OperatorCall:
		return i.evaluateOperator(n, state)
	case *ast.Conditional:
		return i.evaluateConditional(n, state)
	default:
		i.report(state, newRuntimeError(KindNotImplemented, node, fmt.Sprintf("%T", node),
			"unsupported node type %T", node))
		return runtime.Sentinel(), nil
	}
}

// resolveReference looks the reference up through its enclosing chain, then through the
// argument bindings of the active custom call when the chain ends at that call's body.
// Bindings currently being evaluated are skipped so a binding never resolves to itself.
func (i *Interpreter) resolveReference(ref *ast.VariableReference, state *evalState) (*ast.Binding, int, bool) {
	frame := state.frameID()
	exclude := state.excluding(frame)
	if binding, _, ok := ast.ResolveExcluding(ref.Name, ref.Enclosing(), exclude); ok {
		return binding, frame, true
	}
	if act := state.currentActivation(); act != nil && ast.Root(ref) == act.def.Body {
		if binding := act.scope.LookupExcluding(ref.Name, exclude); binding != nil {
			return binding, frame, true
		}
	}
	return nil, 0, false
}

func (i *Interpreter) evaluateVariable(ref *ast.VariableReference, state *evalState) (runtime.Result, error) {
	binding, frame, ok := i.resolveReference(ref, state)
	if !ok {
		i.report(state, newUnboundIdentifierError(ref))
		return runtime.Sentinel(), nil
	}
	if binding.Value == nil {
		i.report(state, newRuntimeError(KindInvalidBinding, ref, ref.Name,
			"binding %q has no value", ref.Name))
		return runtime.Sentinel(), nil
	}
	key := bindingKey{binding: binding, frame: frame}
	if cached, ok := state.cache.get(key); ok {
		return cached, nil
	}

	skipped := state.skipped
	state.enterBinding(key)
	value, err := i.evaluate(binding.Value, state)
	state.leaveBinding(key)
	if err != nil {
		return runtime.Sentinel(), err
	}
	result := i.coerce(state, binding.Declared, value, binding.Name, binding.Value)
	if state.skipped == skipped {
		state.cache.put(key, result)
	}
	return result, nil
}

func (i *Interpreter) evaluateConditional(cond *ast.Conditional, state *evalState) (runtime.Result, error) {
	test, err := i.evaluate(cond.Condition, state)
	if err != nil {
		return runtime.Sentinel(), err
	}
	if test.Truthy() {
		return i.evaluate(cond.Then, state)
	}
	return i.evaluate(cond.Else, state)
}

func (i *Interpreter) evaluateOperator(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	state.pushCallFrame(call)
	defer state.popCallFrame()

	class := call.Operator.Class()
	if class == ast.ClassCustom {
		return i.evaluateCustom(call, state)
	}
	lo, hi := class.Arity()
	if n := len(call.Operands); n < lo || (hi >= 0 && n > hi) {
		i.report(state, newArityError(call, lo, hi))
		return runtime.Sentinel(), nil
	}

	switch class {
	case ast.ClassUnary:
		return i.evaluateUnary(call, state)
	case ast.ClassBinary:
		return i.evaluateBinary(call, state)
	case ast.ClassFold:
		return i.evaluateFold(call, state)
	case ast.ClassCompare:
		return i.evaluateComparison(call, state)
	case ast.ClassPrint:
		return i.evaluatePrint(call, state)
	case ast.ClassRead:
		return i.evaluateRead(call, state)
	case ast.ClassRand:
		return runtime.DoubleResult(i.random.Float64()), nil
	default:
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"operator %s is not implemented", call.Name))
		return runtime.Sentinel(), nil
	}
}

// evaluateOperands evaluates operands left to right.
func (i *Interpreter) evaluateOperands(call *ast.OperatorCall, state *evalState) ([]runtime.Result, error) {
	values := make([]runtime.Result, 0, len(call.Operands))
	for _, operand := range call.Operands {
		val, err := i.evaluate(operand, state)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}
