package ast

import (
	"errors"
	"fmt"
)

// ErrInvalidBinding is returned when a scope cannot be attached.
var ErrInvalidBinding = errors.New("invalid binding")

// Binding associates an identifier with a declared type and an owned expression.
type Binding struct {
	Name     string
	Declared NumberType
	Value    Node
}

func NewBinding(name string, declared NumberType, value Node) *Binding {
	return &Binding{Name: name, Declared: declared, Value: value}
}

// Scope is an ordered list of bindings introduced at one node. When a name is bound
// more than once, the most recently added binding wins.
type Scope struct {
	bindings []*Binding
}

// NewScope builds a scope from bindings in declaration order. Nil bindings are skipped.
func NewScope(bindings ...*Binding) *Scope {
	scope := &Scope{}
	for _, b := range bindings {
		scope.Add(b)
	}
	return scope
}

// Add appends a binding and returns the scope, allocating one when s is nil.
func (s *Scope) Add(b *Binding) *Scope {
	if s == nil {
		s = &Scope{}
	}
	if b != nil {
		s.bindings = append(s.bindings, b)
	}
	return s
}

func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bindings)
}

// Bindings returns a copy of the bindings in declaration order.
func (s *Scope) Bindings() []*Binding {
	if s == nil {
		return nil
	}
	out := make([]*Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Lookup finds the most recently added binding for name.
func (s *Scope) Lookup(name string) *Binding {
	return s.LookupExcluding(name, nil)
}

// LookupExcluding is Lookup ignoring bindings for which exclude reports true.
func (s *Scope) LookupExcluding(name string, exclude func(*Binding) bool) *Binding {
	if s == nil {
		return nil
	}
	for idx := len(s.bindings) - 1; idx >= 0; idx-- {
		b := s.bindings[idx]
		if b.Name != name {
			continue
		}
		if exclude != nil && exclude(b) {
			continue
		}
		return b
	}
	return nil
}

// AttachScope installs scope as node's local bindings and points every bound expression's
// enclosing reference at node, so free variables inside bindings resolve from node outward.
// Attaching to a node that already has bindings appends to them.
func AttachScope(scope *Scope, node Node) (Node, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: scope target is nil", ErrInvalidBinding)
	}
	if scope.Len() == 0 {
		return node, fmt.Errorf("%w: scope has no bindings", ErrInvalidBinding)
	}
	for _, b := range scope.bindings {
		if b.Name == "" {
			return node, fmt.Errorf("%w: binding has no identifier", ErrInvalidBinding)
		}
		if b.Value == nil {
			return node, fmt.Errorf("%w: binding %s has no value", ErrInvalidBinding, b.Name)
		}
	}
	target := node.Scope()
	if target == nil {
		target = &Scope{}
	}
	for _, b := range scope.bindings {
		b.Value.setEnclosing(node)
		target.bindings = append(target.bindings, b)
	}
	node.setScope(target)
	return node, nil
}

// Resolve searches start's scope, then each enclosing node's scope, for name. It returns
// the binding and the node that owns it.
func Resolve(name string, start Node) (*Binding, Node, bool) {
	return ResolveExcluding(name, start, nil)
}

// ResolveExcluding is Resolve ignoring bindings for which exclude reports true.
func ResolveExcluding(name string, start Node, exclude func(*Binding) bool) (*Binding, Node, bool) {
	for node := start; node != nil; node = node.Enclosing() {
		if b := node.Scope().LookupExcluding(name, exclude); b != nil {
			return b, node, true
		}
	}
	return nil, nil, false
}
