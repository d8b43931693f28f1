// Package interpreter evaluates cilisp AST trees built through pkg/ast. Evaluation is a
// single depth-first walk that never mutates the tree: variable references resolve by
// walking enclosing nodes, operators dispatch on their builtin class, and conditionals
// evaluate exactly one branch. Non-fatal failures yield the (Int, NaN) sentinel for the
// failing subexpression and are recorded as RuntimeDiagnostics; only fatal failures abort
// Evaluate with an error.
package interpreter
