package ast

import (
	"fmt"
	"math"
	"strings"
)

// NodeType identifies the AST node variant.
type NodeType string

const (
	NodeNumber      NodeType = "Number"
	NodeOperator    NodeType = "Operator"
	NodeVariable    NodeType = "VariableRef"
	NodeConditional NodeType = "Conditional"
)

// NumberType tags numeric literals, bindings and evaluation results.
type NumberType int

const (
	NoType NumberType = iota
	IntType
	DoubleType
)

func (t NumberType) String() string {
	switch t {
	case IntType:
		return "Int"
	case DoubleType:
		return "Double"
	case NoType:
		return "Unspecified"
	default:
		return fmt.Sprintf("unknown_number_type_%d", int(t))
	}
}

// ParseNumberType maps a declared type name ("int", "double" or "") to a NumberType.
func ParseNumberType(name string) (NumberType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return NoType, nil
	case "int":
		return IntType, nil
	case "double":
		return DoubleType, nil
	default:
		return NoType, fmt.Errorf("unknown number type %q (expected int or double)", name)
	}
}

// Node is implemented by every AST variant.
//
// Scope returns the bindings introduced at the node, if any. Enclosing returns the node
// this one is syntactically nested in; it is a lookup-only reference and never owns.
type Node interface {
	NodeType() NodeType
	Span() Span
	Scope() *Scope
	Enclosing() Node
	setSpan(Span)
	setScope(*Scope)
	setEnclosing(Node)
}

type nodeImpl struct {
	span      Span
	scope     *Scope
	enclosing Node
}

func (n *nodeImpl) Span() Span             { return n.span }
func (n *nodeImpl) Scope() *Scope          { return n.scope }
func (n *nodeImpl) Enclosing() Node        { return n.enclosing }
func (n *nodeImpl) setSpan(span Span)      { n.span = span }
func (n *nodeImpl) setScope(scope *Scope)  { n.scope = scope }
func (n *nodeImpl) setEnclosing(node Node) { n.enclosing = node }

// NumberLiteral is a typed numeric constant. Int literals always hold integral values.
type NumberLiteral struct {
	nodeImpl
	Type  NumberType
	Value float64
}

func (*NumberLiteral) NodeType() NodeType { return NodeNumber }

// OperatorCall applies a builtin or custom operator to an ordered operand list.
type OperatorCall struct {
	nodeImpl
	Operator OperatorKind
	Name     string
	Operands []Node
}

func (*OperatorCall) NodeType() NodeType { return NodeOperator }

// VariableReference names a binding resolved through the enclosing chain at evaluation time.
type VariableReference struct {
	nodeImpl
	Name string
}

func (*VariableReference) NodeType() NodeType { return NodeVariable }

// Conditional evaluates exactly one of Then or Else depending on Condition.
type Conditional struct {
	nodeImpl
	Condition Node
	Then      Node
	Else      Node
}

func (*Conditional) NodeType() NodeType { return NodeConditional }

// NewNumber builds a literal. Int values are floored; an unspecified type is inferred
// from whether the value is integral.
func NewNumber(value float64, typ NumberType) *NumberLiteral {
	switch typ {
	case IntType:
		value = math.Floor(value)
	case DoubleType:
	default:
		if value == math.Trunc(value) {
			typ = IntType
		} else {
			typ = DoubleType
		}
	}
	return &NumberLiteral{Type: typ, Value: value}
}

// NewOperator resolves name against the builtin table and takes ownership of operands.
// Unknown names produce a Custom operator carrying the name.
func NewOperator(name string, operands ...Node) *OperatorCall {
	kind, ok := LookupOperator(name)
	if !ok {
		kind = OperatorCustom
	}
	call := &OperatorCall{Operator: kind, Name: name}
	call.Operands = make([]Node, 0, len(operands))
	for _, operand := range operands {
		if operand == nil {
			continue
		}
		operand.setEnclosing(call)
		call.Operands = append(call.Operands, operand)
	}
	return call
}

func NewVariableRef(name string) *VariableReference {
	return &VariableReference{Name: name}
}

func NewConditional(condition, then, els Node) *Conditional {
	cond := &Conditional{Condition: condition, Then: then, Else: els}
	for _, child := range []Node{condition, then, els} {
		if child != nil {
			child.setEnclosing(cond)
		}
	}
	return cond
}

// Children returns the nodes owned directly by node, excluding scope bindings.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *OperatorCall:
		return n.Operands
	case *Conditional:
		out := make([]Node, 0, 3)
		for _, child := range []Node{n.Condition, n.Then, n.Else} {
			if child != nil {
				out = append(out, child)
			}
		}
		return out
	default:
		return nil
	}
}

// Root follows the enclosing chain to the outermost node.
func Root(node Node) Node {
	if node == nil {
		return nil
	}
	for node.Enclosing() != nil {
		node = node.Enclosing()
	}
	return node
}

// Describe returns a short label for diagnostics.
func Describe(node Node) string {
	switch n := node.(type) {
	case *NumberLiteral:
		return fmt.Sprintf("%s literal %g", n.Type, n.Value)
	case *OperatorCall:
		return fmt.Sprintf("operator %s", n.Name)
	case *VariableReference:
		return fmt.Sprintf("reference %s", n.Name)
	case *Conditional:
		return "conditional"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", node)
	}
}
