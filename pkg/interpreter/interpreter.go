package interpreter

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/driver"
	"cilisp/interpreter-go/pkg/runtime"
)

// DefaultMaxDepth bounds evaluation nesting before RecursionLimitExceeded is reported.
const DefaultMaxDepth = 10000

// Options configures an Interpreter. Zero values select the defaults documented per field.
type Options struct {
	// Logger receives debug traces and every diagnostic. Defaults to slog.Default().
	Logger *slog.Logger
	// Display receives print output. Defaults to stdout with DefaultPrecision.
	Display Display
	// Input feeds the read operator. Defaults to line input from stdin.
	Input InputSource
	// Functions resolves custom operators. Nil reports NotImplemented for every custom call.
	Functions FunctionResolver
	// Random feeds the rand operator. Defaults to a randomly seeded PCG source.
	Random RandomSource
	// MaxDepth bounds nesting; <= 0 selects DefaultMaxDepth.
	MaxDepth int
	// MemoizeBindings evaluates each binding at most once per evaluation and activation.
	MemoizeBindings bool
}

// Interpreter evaluates AST trees. It is not safe for concurrent use.
type Interpreter struct {
	logger      *slog.Logger
	display     Display
	input       InputSource
	functions   FunctionResolver
	random      RandomSource
	maxDepth    int
	memoize     bool
	sourcePath  string
	diagnostics []RuntimeDiagnostic
}

// New returns an interpreter wired to stdin/stdout with memoised bindings.
func New() *Interpreter {
	return NewWithOptions(Options{MemoizeBindings: true})
}

func NewWithOptions(opts Options) *Interpreter {
	i := &Interpreter{
		logger:    opts.Logger,
		display:   opts.Display,
		input:     opts.Input,
		functions: opts.Functions,
		random:    opts.Random,
		maxDepth:  opts.MaxDepth,
		memoize:   opts.MemoizeBindings,
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	if i.display == nil {
		i.display = NewWriterDisplay(os.Stdout, runtime.DefaultPrecision)
	}
	if i.input == nil {
		i.input = NewLineInput(os.Stdin)
	}
	if i.random == nil {
		i.random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if i.maxDepth <= 0 {
		i.maxDepth = DefaultMaxDepth
	}
	return i
}

// SetSourcePath names the document diagnostics point into.
func (i *Interpreter) SetSourcePath(path string) {
	i.sourcePath = path
}

// SetOutput redirects print output to w.
func (i *Interpreter) SetOutput(w io.Writer, precision int) {
	i.display = NewWriterDisplay(w, precision)
}

// Diagnostics returns the diagnostics reported since the last reset.
func (i *Interpreter) Diagnostics() []RuntimeDiagnostic {
	out := make([]RuntimeDiagnostic, len(i.diagnostics))
	copy(out, i.diagnostics)
	return out
}

func (i *Interpreter) ResetDiagnostics() {
	i.diagnostics = nil
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (i *Interpreter) HasErrors() bool {
	for _, diag := range i.diagnostics {
		if diag.Severity == driver.SeverityError {
			return true
		}
	}
	return false
}

// Evaluate walks the tree rooted at node and returns its result. Non-fatal failures yield
// the sentinel for the failing subexpression and are recorded as diagnostics; the returned
// error is non-nil only when the evaluation had to be aborted.
func (i *Interpreter) Evaluate(node ast.Node) (runtime.Result, error) {
	state := newEvalState(i.memoize)
	started := time.Now()
	i.logger.Debug("evaluation started", slog.String("root", ast.Describe(node)))
	result, err := i.evaluate(node, state)
	if err != nil {
		i.logger.Debug("evaluation aborted", slog.String("error", err.Error()))
		return runtime.Sentinel(), err
	}
	i.logger.Debug("evaluation finished",
		slog.String("result", result.String()),
		slog.Int("diagnostics", len(i.diagnostics)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}
