package ast

// Position is a 1-based line/column pair in the source document.
type Position struct {
	Line   int
	Column int
}

// Span covers the source text a node was built from.
type Span struct {
	Start Position
	End   Position
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	node.setSpan(span)
}

// PointSpan returns a span starting and ending at line/column.
func PointSpan(line, column int) Span {
	pos := Position{Line: line, Column: column}
	return Span{Start: pos, End: pos}
}
