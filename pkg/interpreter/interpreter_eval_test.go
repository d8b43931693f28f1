package interpreter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

func TestEvaluateNumberLiterals(t *testing.T) {
	h := newTestHarness(t, Options{})
	for _, v := range []float64{0, 1, 2.5, -2.5, 1e9 + 0.75} {
		got := h.eval(t, ast.NewNumber(v, ast.IntType))
		assert.Equal(t, runtime.Result{Type: ast.IntType, Val: math.Floor(v)}, got)

		got = h.eval(t, ast.NewNumber(v, ast.DoubleType))
		assert.Equal(t, runtime.Result{Type: ast.DoubleType, Val: v}, got)
	}
	assert.Empty(t, h.interp.Diagnostics())
}

func TestArithmeticPromotion(t *testing.T) {
	cases := []struct {
		name string
		node ast.Node
		want runtime.Result
	}{
		{"add ints", ast.Call("add", ast.Int(3), ast.Int(4)), runtime.IntResult(7)},
		{"div ints rounds", ast.Call("div", ast.Int(7), ast.Int(2)), runtime.IntResult(4)},
		{"div double", ast.Call("div", ast.Int(7), ast.Dbl(2)), runtime.DoubleResult(3.5)},
		{"sub double left", ast.Call("sub", ast.Dbl(1), ast.Int(3)), runtime.DoubleResult(-2)},
		{"pow ints", ast.Call("pow", ast.Int(2), ast.Int(10)), runtime.IntResult(1024)},
		{"max", ast.Call("max", ast.Int(2), ast.Dbl(1.5)), runtime.DoubleResult(2)},
		{"min", ast.Call("min", ast.Int(2), ast.Int(-1)), runtime.IntResult(-1)},
		{"hypot", ast.Call("hypot", ast.Int(3), ast.Int(4)), runtime.IntResult(5)},
		{"remainder", ast.Call("remainder", ast.Int(7), ast.Int(3)), runtime.IntResult(1)},
		{"add fold", ast.Call("add", ast.Int(2), ast.Int(3), ast.Int(4)), runtime.IntResult(9)},
		{"mult fold", ast.Call("mult", ast.Int(2), ast.Int(3), ast.Int(4)), runtime.IntResult(24)},
		{"mult fold promotes", ast.Call("mult", ast.Int(2), ast.Dbl(1.5), ast.Int(3)), runtime.DoubleResult(9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHarness(t, Options{})
			assert.Equal(t, tc.want, h.eval(t, tc.node))
			assert.Empty(t, h.interp.Diagnostics())
		})
	}
}

func TestUnaryOperatorsMirrorOperandType(t *testing.T) {
	h := newTestHarness(t, Options{})
	assert.Equal(t, runtime.IntResult(-5), h.eval(t, ast.Call("neg", ast.Int(5))))
	assert.Equal(t, runtime.DoubleResult(2.5), h.eval(t, ast.Call("abs", ast.Dbl(-2.5))))
	assert.Equal(t, runtime.IntResult(1), h.eval(t, ast.Call("sqrt", ast.Int(2))))
	assert.Equal(t, runtime.DoubleResult(math.Sqrt2), h.eval(t, ast.Call("sqrt", ast.Dbl(2))))
	assert.Equal(t, runtime.IntResult(8), h.eval(t, ast.Call("exp2", ast.Int(3))))
	cbrt := h.eval(t, ast.Call("cbrt", ast.Dbl(27)))
	assert.Equal(t, ast.DoubleType, cbrt.Type)
	assert.InDelta(t, 3, cbrt.Val, 1e-12)
	assert.Equal(t, runtime.DoubleResult(0), h.eval(t, ast.Call("log", ast.Dbl(1))))
	assert.Equal(t, runtime.DoubleResult(1), h.eval(t, ast.Call("exp", ast.Dbl(0))))
}

func TestComparisons(t *testing.T) {
	h := newTestHarness(t, Options{})
	assert.Equal(t, runtime.IntResult(1), h.eval(t, ast.Call("less", ast.Int(1), ast.Dbl(1.5))))
	assert.Equal(t, runtime.IntResult(0), h.eval(t, ast.Call("greater", ast.Int(1), ast.Int(2))))
	assert.Equal(t, runtime.IntResult(1), h.eval(t, ast.Call("equal", ast.Int(2), ast.Dbl(2))))
	assert.Equal(t, runtime.IntResult(0), h.eval(t, ast.Call("equal", ast.Call("div", ast.Int(1), ast.Int(0)), ast.Int(0))))
}

func TestRandUsesRandomSource(t *testing.T) {
	h := newTestHarness(t, Options{Random: fixedRandom(0.75)})
	assert.Equal(t, runtime.DoubleResult(0.75), h.eval(t, ast.Call("rand")))
}

func TestArityErrorsAreNonFatal(t *testing.T) {
	cases := []ast.Node{
		ast.Call("add", ast.Int(1)),
		ast.Call("mult"),
		ast.Call("sub", ast.Int(1)),
		ast.Call("div", ast.Int(1), ast.Int(2), ast.Int(3)),
		ast.Call("neg"),
		ast.Call("abs", ast.Int(1), ast.Int(2)),
		ast.Call("print"),
		ast.Call("rand", ast.Int(1)),
		ast.Call("less", ast.Int(1)),
	}
	for _, node := range cases {
		h := newTestHarness(t, Options{})
		got := h.eval(t, node)
		assert.True(t, got.IsSentinel(), ast.Describe(node))
		assert.Equal(t, []ErrorKind{KindArity}, h.kinds(), ast.Describe(node))
	}
}

func TestArityErrorSkipsOperandEvaluation(t *testing.T) {
	h := newTestHarness(t, Options{})
	got := h.eval(t, ast.Call("sub", ast.Call("print", ast.Int(1))))
	assert.True(t, got.IsSentinel())
	assert.Empty(t, h.display.values)

	diags := h.interp.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "sub expects exactly 2 operands, got 1", diags[0].Message)
	assert.Equal(t, "sub", diags[0].Subject)
}

func TestDivisionByZero(t *testing.T) {
	for _, name := range []string{"div", "remainder"} {
		h := newTestHarness(t, Options{})
		got := h.eval(t, ast.Call(name, ast.Int(5), ast.Call("sub", ast.Int(2), ast.Int(2))))
		assert.True(t, got.IsSentinel())
		assert.Equal(t, []ErrorKind{KindDivisionByZero}, h.kinds())
	}
}

func TestSentinelDoesNotAbortSiblings(t *testing.T) {
	h := newTestHarness(t, Options{})
	got := h.eval(t, ast.Call("print", ast.Call("div", ast.Int(1), ast.Int(0)), ast.Int(2)))
	assert.Equal(t, runtime.IntResult(2), got)
	assert.Equal(t, []string{"Int nan", "Int 2"}, h.display.lines())
	assert.Equal(t, []ErrorKind{KindDivisionByZero}, h.kinds())
}

func TestConditionalEvaluatesOneBranch(t *testing.T) {
	build := func(cond ast.Node) ast.Node {
		return ast.If(cond, ast.Call("print", ast.Int(1)), ast.Call("print", ast.Int(2)))
	}

	h := newTestHarness(t, Options{})
	assert.Equal(t, runtime.IntResult(2), h.eval(t, build(ast.Int(0))))
	assert.Equal(t, []string{"Int 2"}, h.display.lines())

	h = newTestHarness(t, Options{})
	assert.Equal(t, runtime.IntResult(1), h.eval(t, build(ast.Dbl(0.5))))
	assert.Equal(t, []string{"Int 1"}, h.display.lines())

	h = newTestHarness(t, Options{})
	h.input.values = []runtime.Result{runtime.IntResult(9)}
	got := h.eval(t, ast.If(ast.Int(1), ast.Dbl(1.5), ast.Call("read")))
	assert.Equal(t, runtime.DoubleResult(1.5), got)
	assert.Equal(t, 0, h.input.reads)
}

func TestVariableResolution(t *testing.T) {
	h := newTestHarness(t, Options{})
	node := ast.Let(ast.Call("add", ast.Ref("x"), ast.Int(1)), ast.Bind("x", ast.NoType, ast.Int(5)))
	assert.Equal(t, runtime.IntResult(6), h.eval(t, node))
	assert.Empty(t, h.interp.Diagnostics())
}

func TestSiblingScopeIsNotVisible(t *testing.T) {
	h := newTestHarness(t, Options{})
	bound := ast.Let(ast.Call("neg", ast.Int(1)), ast.Bind("x", ast.IntType, ast.Int(5)))
	sibling := ast.Call("abs", ast.Ref("x"))
	got := h.eval(t, ast.Call("add", bound, sibling))
	assert.True(t, got.IsSentinel())

	diags := h.interp.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, KindUnboundIdentifier, diags[0].Kind)
	assert.Equal(t, "x", diags[0].Subject)
	assert.Contains(t, diags[0].Message, `"x"`)
}

func TestBindingsResolveThroughOuterScopes(t *testing.T) {
	h := newTestHarness(t, Options{})
	inner := ast.Let(ast.Call("neg", ast.Ref("x")),
		ast.Bind("x", ast.NoType, ast.Call("add", ast.Ref("x"), ast.Int(1))))
	outer := ast.Let(ast.Call("abs", inner), ast.Bind("x", ast.NoType, ast.Int(2)))
	assert.Equal(t, runtime.IntResult(3), h.eval(t, outer))
	assert.Empty(t, h.interp.Diagnostics())
}

func TestSelfReferenceWithinScopeIsUnbound(t *testing.T) {
	h := newTestHarness(t, Options{})
	node := ast.Let(ast.Call("neg", ast.Ref("x")),
		ast.Bind("x", ast.NoType, ast.Call("add", ast.Ref("x"), ast.Int(1))))
	got := h.eval(t, node)
	assert.True(t, math.IsNaN(got.Val))
	assert.Equal(t, []ErrorKind{KindUnboundIdentifier}, h.kinds())
}

func TestSiblingBindingsReferenceEachOther(t *testing.T) {
	h := newTestHarness(t, Options{})
	node := ast.Let(ast.Call("add", ast.Ref("a"), ast.Ref("b")),
		ast.Bind("a", ast.NoType, ast.Call("mult", ast.Ref("b"), ast.Int(10))),
		ast.Bind("b", ast.NoType, ast.Int(2)),
	)
	assert.Equal(t, runtime.IntResult(22), h.eval(t, node))
}

func TestRedeclarationShadowsByMostRecent(t *testing.T) {
	h := newTestHarness(t, Options{})
	node := ast.Let(ast.Call("neg", ast.Ref("x")),
		ast.Bind("x", ast.NoType, ast.Int(1)),
		ast.Bind("x", ast.NoType, ast.Int(2)),
	)
	assert.Equal(t, runtime.IntResult(-2), h.eval(t, node))
}

func TestDeclaredTypeCoercion(t *testing.T) {
	h := newTestHarness(t, Options{})
	x := ast.Let(ast.Call("abs", ast.Ref("x")), ast.Bind("x", ast.IntType, ast.Dbl(5.7)))
	assert.Equal(t, runtime.IntResult(6), h.eval(t, x))
	diags := h.interp.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, KindPrecisionLoss, diags[0].Kind)
	assert.Equal(t, "x", diags[0].Subject)
	assert.False(t, h.interp.HasErrors())

	h = newTestHarness(t, Options{})
	y := ast.Let(ast.Call("abs", ast.Ref("y")), ast.Bind("y", ast.DoubleType, ast.Int(5)))
	assert.Equal(t, runtime.DoubleResult(5), h.eval(t, y))
	assert.Empty(t, h.interp.Diagnostics())
}

func TestCoerce(t *testing.T) {
	got, lossy := Coerce(ast.IntType, runtime.DoubleResult(2.0))
	assert.Equal(t, runtime.IntResult(2), got)
	assert.False(t, lossy)

	got, lossy = Coerce(ast.NoType, runtime.DoubleResult(2.5))
	assert.Equal(t, runtime.DoubleResult(2.5), got)
	assert.False(t, lossy)

	got, lossy = Coerce(ast.DoubleType, runtime.Sentinel())
	assert.True(t, got.IsSentinel())
	assert.False(t, lossy)
}

func TestBindingMemoization(t *testing.T) {
	build := func() ast.Node {
		return ast.Let(ast.Call("add", ast.Ref("x"), ast.Ref("x")),
			ast.Bind("x", ast.NoType, ast.Call("print", ast.Int(4))))
	}

	h := newTestHarness(t, Options{MemoizeBindings: true})
	assert.Equal(t, runtime.IntResult(8), h.eval(t, build()))
	assert.Len(t, h.display.values, 1)

	h = newTestHarness(t, Options{MemoizeBindings: false})
	assert.Equal(t, runtime.IntResult(8), h.eval(t, build()))
	assert.Len(t, h.display.values, 2)
}

func TestMemoizationDoesNotChangeResults(t *testing.T) {
	build := func() ast.Node {
		inner := ast.Let(ast.Call("sub", ast.Ref("a"), ast.Ref("b")),
			ast.Bind("a", ast.NoType, ast.Ref("b")),
			ast.Bind("b", ast.NoType, ast.Ref("a")),
		)
		return ast.Let(ast.Call("add", inner, ast.Int(0)),
			ast.Bind("a", ast.NoType, ast.Int(10)),
			ast.Bind("b", ast.NoType, ast.Int(20)),
		)
	}

	plain := newTestHarness(t, Options{MemoizeBindings: false})
	memoized := newTestHarness(t, Options{MemoizeBindings: true})
	want := plain.eval(t, build())
	assert.Equal(t, runtime.IntResult(-10), want)
	assert.Equal(t, want, memoized.eval(t, build()))
	assert.Empty(t, memoized.kinds())
}

func TestEvaluateDoesNotMutateTree(t *testing.T) {
	h := newTestHarness(t, Options{MemoizeBindings: true})
	operand := ast.Call("add", ast.Int(1), ast.Int(2))
	root := ast.Call("mult", operand, ast.Int(2))
	assert.Equal(t, runtime.IntResult(6), h.eval(t, root))
	assert.Equal(t, runtime.IntResult(6), h.eval(t, root))
	assert.Same(t, operand, root.Operands[0])
	assert.Len(t, operand.Operands, 2)
}

func TestRecursionLimit(t *testing.T) {
	var node ast.Node = ast.Int(1)
	for range 20 {
		node = ast.Call("neg", node)
	}
	h := newTestHarness(t, Options{MaxDepth: 10})
	got := h.eval(t, node)
	assert.True(t, got.IsSentinel())
	assert.Equal(t, []ErrorKind{KindRecursionLimitExceeded}, h.kinds())

	h = newTestHarness(t, Options{MaxDepth: 100})
	assert.Equal(t, runtime.IntResult(1), h.eval(t, node))
}

func TestCustomOperatorWithoutResolver(t *testing.T) {
	h := newTestHarness(t, Options{})
	got := h.eval(t, ast.Call("square", ast.Int(3)))
	assert.True(t, got.IsSentinel())
	assert.Equal(t, []ErrorKind{KindNotImplemented}, h.kinds())
}

func TestNilNodeYieldsSentinel(t *testing.T) {
	h := newTestHarness(t, Options{})
	assert.True(t, h.eval(t, nil).IsSentinel())
}

func TestDiagnosticsAccumulateUntilReset(t *testing.T) {
	h := newTestHarness(t, Options{})
	h.eval(t, ast.Ref("a"))
	h.eval(t, ast.Ref("b"))
	assert.Len(t, h.interp.Diagnostics(), 2)
	assert.True(t, h.interp.HasErrors())
	h.interp.ResetDiagnostics()
	assert.Empty(t, h.interp.Diagnostics())
}

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := newDivisionByZeroError(ast.Call("div"))
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.NotErrorIs(t, err, ErrArity)
	assert.True(t, KindOutputFailure.Fatal())
	assert.False(t, KindArity.Fatal())
}
