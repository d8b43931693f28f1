package interpreter

import (
	"io"
	"log/slog"
	"testing"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

type recordingDisplay struct {
	values []runtime.Result
}

func (d *recordingDisplay) Show(value runtime.Result) error {
	d.values = append(d.values, value)
	return nil
}

func (d *recordingDisplay) lines() []string {
	out := make([]string, 0, len(d.values))
	for _, v := range d.values {
		out = append(out, v.Describe(runtime.DefaultPrecision))
	}
	return out
}

type scriptedInput struct {
	values []runtime.Result
	reads  int
}

func (s *scriptedInput) ReadNumber() (runtime.Result, error) {
	if s.reads >= len(s.values) {
		return runtime.Sentinel(), io.EOF
	}
	v := s.values[s.reads]
	s.reads++
	return v, nil
}

type fixedRandom float64

func (r fixedRandom) Float64() float64 { return float64(r) }

type testHarness struct {
	interp  *Interpreter
	display *recordingDisplay
	input   *scriptedInput
}

func newTestHarness(t *testing.T, opts Options) *testHarness {
	t.Helper()
	display := &recordingDisplay{}
	input := &scriptedInput{}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Display == nil {
		opts.Display = display
	}
	if opts.Input == nil {
		opts.Input = input
	}
	if opts.Random == nil {
		opts.Random = fixedRandom(0.25)
	}
	return &testHarness{interp: NewWithOptions(opts), display: display, input: input}
}

func (h *testHarness) eval(t *testing.T, node ast.Node) runtime.Result {
	t.Helper()
	result, err := h.interp.Evaluate(node)
	if err != nil {
		t.Fatalf("evaluate %s: %v", ast.Describe(node), err)
	}
	return result
}

func (h *testHarness) kinds() []ErrorKind {
	var out []ErrorKind
	for _, diag := range h.interp.Diagnostics() {
		out = append(out, diag.Kind)
	}
	return out
}
