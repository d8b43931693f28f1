package interpreter

import (
	"errors"
	"fmt"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/driver"
)

// ErrorKind classifies runtime failures and warnings.
type ErrorKind string

const (
	KindAllocationFailure      ErrorKind = "AllocationFailure"
	KindOutputFailure          ErrorKind = "OutputFailure"
	KindArity                  ErrorKind = "ArityError"
	KindDivisionByZero         ErrorKind = "DivisionByZero"
	KindUnboundIdentifier      ErrorKind = "UnboundIdentifier"
	KindInvalidBinding         ErrorKind = "InvalidBinding"
	KindRecursionLimitExceeded ErrorKind = "RecursionLimitExceeded"
	KindNotImplemented         ErrorKind = "NotImplemented"
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindPrecisionLoss          ErrorKind = "PrecisionLoss"
)

var (
	ErrAllocationFailure      = errors.New("allocation failure")
	ErrOutputFailure          = errors.New("output failure")
	ErrArity                  = errors.New("arity error")
	ErrDivisionByZero         = errors.New("division by zero")
	ErrUnboundIdentifier      = errors.New("unbound identifier")
	ErrInvalidBinding         = ast.ErrInvalidBinding
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
	ErrNotImplemented         = errors.New("not implemented")
	ErrInvalidInput           = errors.New("invalid input")
	ErrPrecisionLoss          = errors.New("precision loss")
)

var kindSentinels = map[ErrorKind]error{
	KindAllocationFailure:      ErrAllocationFailure,
	KindOutputFailure:          ErrOutputFailure,
	KindArity:                  ErrArity,
	KindDivisionByZero:         ErrDivisionByZero,
	KindUnboundIdentifier:      ErrUnboundIdentifier,
	KindInvalidBinding:         ErrInvalidBinding,
	KindRecursionLimitExceeded: ErrRecursionLimitExceeded,
	KindNotImplemented:         ErrNotImplemented,
	KindInvalidInput:           ErrInvalidInput,
	KindPrecisionLoss:          ErrPrecisionLoss,
}

// Fatal reports whether the kind aborts the whole evaluation.
func (k ErrorKind) Fatal() bool {
	return k == KindAllocationFailure || k == KindOutputFailure
}

// Severity maps the kind onto the diagnostic severity scale.
func (k ErrorKind) Severity() driver.DiagnosticSeverity {
	if k == KindPrecisionLoss {
		return driver.SeverityWarning
	}
	return driver.SeverityError
}

// RuntimeError describes one failure raised while evaluating Node. Subject names the
// identifier or operator involved.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Subject string
	Node    ast.Node
	cause   error
	context *runtimeDiagnosticContext
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches the sentinel error for the kind, so errors.Is(err, ErrArity) works.
func (e *RuntimeError) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func newRuntimeError(kind ErrorKind, node ast.Node, subject string, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
		Node:    node,
	}
}

func newArityError(call *ast.OperatorCall, lo, hi int) *RuntimeError {
	got := len(call.Operands)
	var expected string
	switch {
	case hi < 0:
		expected = fmt.Sprintf("at least %d", lo)
	case lo == hi:
		expected = fmt.Sprintf("exactly %d", lo)
	default:
		expected = fmt.Sprintf("%d to %d", lo, hi)
	}
	return newRuntimeError(KindArity, call, call.Name,
		"%s expects %s operand%s, got %d", call.Name, expected, plural(max(lo, hi)), got)
}

func newDivisionByZeroError(call *ast.OperatorCall) *RuntimeError {
	return newRuntimeError(KindDivisionByZero, call, call.Name, "division by zero in %s", call.Name)
}

func newUnboundIdentifierError(ref *ast.VariableReference) *RuntimeError {
	return newRuntimeError(KindUnboundIdentifier, ref, ref.Name, "unbound identifier %q", ref.Name)
}

func newPrecisionLossWarning(node ast.Node, name string, from, to float64) *RuntimeError {
	return newRuntimeError(KindPrecisionLoss, node, name,
		"precision loss assigning %g to int %s (rounded to %g)", from, name, to)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
