package interpreter

import (
	"errors"
	"fmt"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// ErrBuiltinName is returned when a custom operator would shadow a builtin.
var ErrBuiltinName = errors.New("name is reserved by a builtin operator")

// FunctionResolver maps a custom operator name to its definition.
type FunctionResolver interface {
	ResolveFunction(name string) (*ast.FunctionDefinition, bool)
}

// FunctionTable is a map-backed FunctionResolver. Redefining a name replaces it.
type FunctionTable struct {
	defs  map[string]*ast.FunctionDefinition
	order []string
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{defs: make(map[string]*ast.FunctionDefinition)}
}

func (t *FunctionTable) Define(def *ast.FunctionDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("function definition requires a name")
	}
	if ast.IsBuiltinOperator(def.Name) {
		return fmt.Errorf("define %s: %w", def.Name, ErrBuiltinName)
	}
	if def.Body == nil {
		return fmt.Errorf("define %s: function has no body", def.Name)
	}
	seen := make(map[string]struct{}, len(def.Params))
	for _, param := range def.Params {
		if param == nil || param.Name == "" {
			return fmt.Errorf("define %s: parameter without a name", def.Name)
		}
		if _, dup := seen[param.Name]; dup {
			return fmt.Errorf("define %s: duplicate parameter %s", def.Name, param.Name)
		}
		seen[param.Name] = struct{}{}
	}
	if _, exists := t.defs[def.Name]; !exists {
		t.order = append(t.order, def.Name)
	}
	t.defs[def.Name] = def
	return nil
}

func (t *FunctionTable) ResolveFunction(name string) (*ast.FunctionDefinition, bool) {
	if t == nil {
		return nil, false
	}
	def, ok := t.defs[name]
	return def, ok
}

// Definitions returns the definitions in first-definition order.
func (t *FunctionTable) Definitions() []*ast.FunctionDefinition {
	if t == nil {
		return nil
	}
	out := make([]*ast.FunctionDefinition, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.defs[name])
	}
	return out
}

// evaluateCustom evaluates the arguments in the caller's context, binds them by parameter
// name in a fresh activation and evaluates the body. The tree is never modified.
func (i *Interpreter) evaluateCustom(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	if i.functions == nil {
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"custom operator %s is not defined", call.Name))
		return runtime.Sentinel(), nil
	}
	def, ok := i.functions.ResolveFunction(call.Name)
	if !ok || def == nil || def.Body == nil {
		i.report(state, newRuntimeError(KindNotImplemented, call, call.Name,
			"custom operator %s is not defined", call.Name))
		return runtime.Sentinel(), nil
	}
	if len(call.Operands) != len(def.Params) {
		n := len(def.Params)
		i.report(state, newArityError(call, n, n))
		return runtime.Sentinel(), nil
	}

	scope := ast.NewScope()
	for idx, operand := range call.Operands {
		param := def.Params[idx]
		val, err := i.evaluate(operand, state)
		if err != nil {
			return runtime.Sentinel(), err
		}
		val = i.coerce(state, param.Declared, val, param.Name, operand)
		scope.Add(ast.NewBinding(param.Name, param.Declared, argumentLiteral(val)))
	}

	state.pushActivation(def, scope)
	defer state.popActivation()
	return i.evaluate(def.Body, state)
}

// argumentLiteral holds an evaluated argument without re-flooring or re-typing it.
func argumentLiteral(val runtime.Result) *ast.NumberLiteral {
	return &ast.NumberLiteral{Type: val.Type, Value: val.Val}
}
