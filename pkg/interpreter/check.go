package interpreter

import (
	"cilisp/interpreter-go/pkg/ast"
)

// Check inspects the tree rooted at node without evaluating it, including both branches of
// every conditional, and returns builtin arity errors, unresolved custom operators,
// unbound identifiers and literal zero divisors. Diagnostics recorded by earlier
// evaluations are left untouched.
func (i *Interpreter) Check(node ast.Node) []RuntimeDiagnostic {
	return i.check(node, nil)
}

// CheckFunction checks a custom operator body with its parameters in scope.
func (i *Interpreter) CheckFunction(def *ast.FunctionDefinition) []RuntimeDiagnostic {
	if def == nil {
		return nil
	}
	params := ast.NewScope()
	for _, param := range def.Params {
		if param != nil {
			params.Add(ast.NewBinding(param.Name, param.Declared, ast.Int(0)))
		}
	}
	return i.check(def.Body, params)
}

func (i *Interpreter) check(root ast.Node, params *ast.Scope) []RuntimeDiagnostic {
	var out []RuntimeDiagnostic
	state := newEvalState(false)
	add := func(err *RuntimeError) {
		out = append(out, i.BuildRuntimeDiagnostic(i.attachRuntimeContext(err, state)))
	}
	ast.Walk(root, func(node ast.Node, owners []*ast.Binding) bool {
		switch n := node.(type) {
		case *ast.VariableReference:
			i.checkReference(n, root, params, owners, add)
		case *ast.OperatorCall:
			i.checkOperator(n, add)
		}
		return true
	})
	return out
}

// checkReference resolves ref the way evaluation does: a binding never sees itself, so the
// bindings whose values contain ref are skipped.
func (i *Interpreter) checkReference(ref *ast.VariableReference, root ast.Node, params *ast.Scope, owners []*ast.Binding, add func(*RuntimeError)) {
	owned := func(b *ast.Binding) bool {
		for _, owner := range owners {
			if owner == b {
				return true
			}
		}
		return false
	}
	if _, _, ok := ast.ResolveExcluding(ref.Name, ref.Enclosing(), owned); ok {
		return
	}
	if params != nil && ast.Root(ref) == root && params.Lookup(ref.Name) != nil {
		return
	}
	add(newUnboundIdentifierError(ref))
}

func (i *Interpreter) checkOperator(call *ast.OperatorCall, add func(*RuntimeError)) {
	class := call.Operator.Class()
	if class == ast.ClassCustom {
		if i.functions == nil {
			add(newRuntimeError(KindNotImplemented, call, call.Name, "custom operator %s is not defined", call.Name))
			return
		}
		def, ok := i.functions.ResolveFunction(call.Name)
		if !ok || def == nil {
			add(newRuntimeError(KindNotImplemented, call, call.Name, "custom operator %s is not defined", call.Name))
			return
		}
		if n := len(def.Params); len(call.Operands) != n {
			add(newArityError(call, n, n))
		}
		return
	}
	lo, hi := class.Arity()
	if n := len(call.Operands); n < lo || (hi >= 0 && n > hi) {
		add(newArityError(call, lo, hi))
		return
	}
	if call.Operator == ast.OperatorDiv || call.Operator == ast.OperatorRemainder {
		if lit, ok := call.Operands[1].(*ast.NumberLiteral); ok && lit.Value == 0 {
			add(newDivisionByZeroError(call))
		}
	}
}
