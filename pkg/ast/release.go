package ast

// Walk visits node and everything it owns in pre-order: scope binding values first, then
// operands or conditional branches. owners lists the bindings whose values enclose the
// visited node, outermost first; the slice is reused between calls. Returning false from
// visit skips the node's subtree. The enclosing reference is never followed.
func Walk(node Node, visit func(node Node, owners []*Binding) bool) {
	walk(node, nil, visit)
}

func walk(node Node, owners []*Binding, visit func(Node, []*Binding) bool) {
	if node == nil || !visit(node, owners) {
		return
	}
	for _, b := range node.Scope().Bindings() {
		walk(b.Value, append(owners, b), visit)
	}
	for _, child := range Children(node) {
		walk(child, owners, visit)
	}
}

// Release tears down the subtree owned by node, children before parents, and returns the
// number of nodes released. Each released node drops its operands, branches, bindings and
// its enclosing reference; the enclosing node itself is never touched.
func Release(node Node) int {
	if node == nil {
		return 0
	}
	released := 0
	switch n := node.(type) {
	case *OperatorCall:
		for _, operand := range n.Operands {
			released += Release(operand)
		}
		n.Operands = nil
	case *Conditional:
		released += Release(n.Condition)
		released += Release(n.Then)
		released += Release(n.Else)
		n.Condition, n.Then, n.Else = nil, nil, nil
	}
	if scope := node.Scope(); scope != nil {
		for _, b := range scope.bindings {
			released += Release(b.Value)
			b.Value = nil
		}
		scope.bindings = nil
	}
	node.setScope(nil)
	node.setEnclosing(nil)
	return released + 1
}

// ReleaseFunction tears down a function definition's body.
func ReleaseFunction(def *FunctionDefinition) int {
	if def == nil {
		return 0
	}
	released := Release(def.Body)
	def.Body = nil
	return released
}
