package ast

// Parameter is a named, optionally typed argument slot of a custom operator.
type Parameter struct {
	Name     string
	Declared NumberType
}

// FunctionDefinition is the body and parameter list a custom operator resolves to.
// The body is the root of its own tree: its enclosing reference stays nil and argument
// bindings are supplied by the evaluator per call.
type FunctionDefinition struct {
	Name   string
	Params []*Parameter
	Body   Node
	span   Span
}

func NewFunctionDefinition(name string, params []*Parameter, body Node) *FunctionDefinition {
	return &FunctionDefinition{Name: name, Params: params, Body: body}
}

func (d *FunctionDefinition) Span() Span { return d.span }

// SetDefinitionSpan records where the definition was declared.
func SetDefinitionSpan(def *FunctionDefinition, span Span) {
	if def != nil {
		def.span = span
	}
}

// Param builds a parameter for NewFunctionDefinition.
func Param(name string, declared NumberType) *Parameter {
	return &Parameter{Name: name, Declared: declared}
}
