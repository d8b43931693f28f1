package interpreter

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

func TestParseNumberToken(t *testing.T) {
	cases := []struct {
		token string
		want  runtime.Result
	}{
		{"42", runtime.IntResult(42)},
		{" -7 \r", runtime.IntResult(-7)},
		{"4.5", runtime.DoubleResult(4.5)},
		{"3.", runtime.DoubleResult(3)},
		{"1e3", runtime.DoubleResult(1000)},
	}
	for _, tc := range cases {
		got, err := ParseNumberToken(tc.token)
		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.want, got, tc.token)
	}

	for _, bad := range []string{"", "   ", "abc", "1,5"} {
		_, err := ParseNumberToken(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestReadFromLineInput(t *testing.T) {
	h := newTestHarness(t, Options{Input: NewLineInput(strings.NewReader("7\n2.5\n"))})
	got := h.eval(t, ast.Call("add", ast.Call("read"), ast.Call("read")))
	assert.Equal(t, runtime.DoubleResult(9.5), got)
	assert.Empty(t, h.interp.Diagnostics())
}

func TestReadAtEndOfInput(t *testing.T) {
	h := newTestHarness(t, Options{Input: NewLineInput(strings.NewReader(""))})
	assert.True(t, h.eval(t, ast.Call("read")).IsSentinel())
	assert.Equal(t, []ErrorKind{KindInvalidInput}, h.kinds())
}

func TestReadRejectsMalformedToken(t *testing.T) {
	h := newTestHarness(t, Options{Input: NewLineInput(strings.NewReader("seven\n"))})
	assert.True(t, h.eval(t, ast.Call("read")).IsSentinel())
	diags := h.interp.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, KindInvalidInput, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "seven")
}

func TestReadOversizedLineIsFatal(t *testing.T) {
	h := newTestHarness(t, Options{Input: NewLineInputSize(strings.NewReader(strings.Repeat("1", 128)+"\n"), 16)})
	_, err := h.interp.Evaluate(ast.Call("print", ast.Call("read"), ast.Int(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailure)
	assert.Empty(t, h.display.values, "evaluation stops at the failed read")

	var rtErr *RuntimeError
	require.ErrorAs(t, err, &rtErr)
	assert.Equal(t, KindAllocationFailure, rtErr.Kind)
}

func TestPrintShowsEachOperandAndReturnsLast(t *testing.T) {
	var out bytes.Buffer
	h := newTestHarness(t, Options{Display: NewWriterDisplay(&out, 2)})
	got := h.eval(t, ast.Call("print", ast.Int(1), ast.Dbl(2.5), ast.Call("neg", ast.Int(3))))
	assert.Equal(t, runtime.IntResult(-3), got)
	assert.Equal(t, "Int 1\nDouble 2.50\nInt -3\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrintWriteFailureIsFatal(t *testing.T) {
	h := newTestHarness(t, Options{Display: NewWriterDisplay(failingWriter{}, 2)})
	_, err := h.interp.Evaluate(ast.Call("add", ast.Call("print", ast.Int(1)), ast.Int(2)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputFailure)
	assert.Contains(t, err.Error(), "disk full")

	diag := h.interp.BuildRuntimeDiagnostic(err)
	assert.Equal(t, KindOutputFailure, diag.Kind)
	require.Len(t, diag.Notes, 1)
	assert.Equal(t, "while evaluating add", diag.Notes[0].Message)
}

func TestSetOutputRedirectsPrint(t *testing.T) {
	var out bytes.Buffer
	h := newTestHarness(t, Options{})
	h.interp.SetOutput(&out, 1)
	h.eval(t, ast.Call("print", ast.Dbl(1.25)))
	assert.Equal(t, "Double 1.2\n", out.String())
}

func TestLineInputReportsEOF(t *testing.T) {
	in := NewLineInput(strings.NewReader("1\n"))
	_, err := in.ReadNumber()
	require.NoError(t, err)
	_, err = in.ReadNumber()
	assert.ErrorIs(t, err, io.EOF)
}
