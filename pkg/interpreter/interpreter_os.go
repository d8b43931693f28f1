package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// Display is the boundary print writes to, once per operand.
type Display interface {
	Show(value runtime.Result) error
}

// InputSource is the boundary read blocks on. Implementations decide whether the token is
// integral or fractional.
type InputSource interface {
	ReadNumber() (runtime.Result, error)
}

// RandomSource feeds the rand operator.
type RandomSource interface {
	Float64() float64
}

// WriterDisplay writes one "Type value" line per shown value.
type WriterDisplay struct {
	W         io.Writer
	Precision int
}

func NewWriterDisplay(w io.Writer, precision int) *WriterDisplay {
	return &WriterDisplay{W: w, Precision: precision}
}

func (d *WriterDisplay) Show(value runtime.Result) error {
	_, err := fmt.Fprintln(d.W, value.Describe(d.Precision))
	return err
}

// LineInput reads one token per line.
type LineInput struct {
	scanner *bufio.Scanner
}

func NewLineInput(r io.Reader) *LineInput {
	return &LineInput{scanner: bufio.NewScanner(r)}
}

// NewLineInputSize limits the accepted line length to maxTokenSize bytes.
func NewLineInputSize(r io.Reader, maxTokenSize int) *LineInput {
	scanner := bufio.NewScanner(r)
	initial := min(maxTokenSize, 4096)
	scanner.Buffer(make([]byte, 0, initial), maxTokenSize)
	return &LineInput{scanner: scanner}
}

func (in *LineInput) ReadNumber() (runtime.Result, error) {
	if !in.scanner.Scan() {
		err := in.scanner.Err()
		if errors.Is(err, bufio.ErrTooLong) {
			return runtime.Sentinel(), fmt.Errorf("%w: %v", ErrAllocationFailure, err)
		}
		if err == nil {
			err = io.EOF
		}
		return runtime.Sentinel(), err
	}
	return ParseNumberToken(in.scanner.Text())
}

// ParseNumberToken parses a numeric token. Tokens with a fractional part, an exponent or a
// non-finite spelling are Doubles; everything else is an Int.
func ParseNumberToken(token string) (runtime.Result, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return runtime.Sentinel(), fmt.Errorf("%w: empty token", ErrInvalidInput)
	}
	val, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return runtime.Sentinel(), fmt.Errorf("%w: %q is not a number", ErrInvalidInput, token)
	}
	if strings.ContainsAny(token, ".eEpP") || math.IsInf(val, 0) || math.IsNaN(val) {
		return runtime.DoubleResult(val), nil
	}
	return runtime.IntResult(val), nil
}

func (i *Interpreter) evaluatePrint(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	last := runtime.Sentinel()
	for _, operand := range call.Operands {
		val, err := i.evaluate(operand, state)
		if err != nil {
			return runtime.Sentinel(), err
		}
		if err := i.display.Show(val); err != nil {
			return runtime.Sentinel(), i.fatal(state, KindOutputFailure, call, err, "print failed: %v", err)
		}
		last = val
	}
	return last, nil
}

func (i *Interpreter) evaluateRead(call *ast.OperatorCall, state *evalState) (runtime.Result, error) {
	val, err := i.input.ReadNumber()
	switch {
	case err == nil:
		return val, nil
	case errors.Is(err, ErrAllocationFailure):
		return runtime.Sentinel(), i.fatal(state, KindAllocationFailure, call, err, "read failed: %v", err)
	case errors.Is(err, io.EOF):
		i.report(state, newRuntimeError(KindInvalidInput, call, call.Name, "read reached end of input"))
	default:
		rtErr := newRuntimeError(KindInvalidInput, call, call.Name, "read failed: %v", err)
		rtErr.cause = err
		i.report(state, rtErr)
	}
	return runtime.Sentinel(), nil
}

// fatal builds the error that aborts the evaluation.
func (i *Interpreter) fatal(state *evalState, kind ErrorKind, node ast.Node, cause error, format string, args ...any) error {
	rtErr := newRuntimeError(kind, node, ast.Describe(node), format, args...)
	rtErr.cause = cause
	return i.attachRuntimeContext(rtErr, state)
}
