package ast

// Int builds an Int literal.
func Int(v float64) *NumberLiteral { return NewNumber(v, IntType) }

// Dbl builds a Double literal.
func Dbl(v float64) *NumberLiteral { return NewNumber(v, DoubleType) }

// Call builds an operator node.
func Call(name string, operands ...Node) *OperatorCall { return NewOperator(name, operands...) }

// Ref builds a variable reference.
func Ref(name string) *VariableReference { return NewVariableRef(name) }

// If builds a conditional.
func If(condition, then, els Node) *Conditional { return NewConditional(condition, then, els) }

// Bind builds a binding.
func Bind(name string, declared NumberType, value Node) *Binding {
	return NewBinding(name, declared, value)
}

// Let attaches bindings to node and returns it. It panics on invalid bindings and is meant
// for tests and hand-built trees.
func Let[T Node](node T, bindings ...*Binding) T {
	if _, err := AttachScope(NewScope(bindings...), node); err != nil {
		panic(err)
	}
	return node
}
