package interpreter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/driver"
)

const maxDiagnosticNotes = 8

type runtimeDiagnosticContext struct {
	node      ast.Node
	callStack []*ast.OperatorCall
}

type RuntimeDiagnosticNote struct {
	Message  string
	Location driver.DiagnosticLocation
}

type RuntimeDiagnostic struct {
	Severity driver.DiagnosticSeverity
	Kind     ErrorKind
	Subject  string
	Message  string
	Location driver.DiagnosticLocation
	Notes    []RuntimeDiagnosticNote
}

// BuildRuntimeDiagnostic converts an evaluation error into a located diagnostic. Errors
// that are not RuntimeErrors are reported without a location.
func (i *Interpreter) BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		message := ""
		if err != nil {
			message = err.Error()
		}
		return RuntimeDiagnostic{Severity: driver.SeverityError, Message: message}
	}

	ctx := rtErr.context
	node := rtErr.Node
	if ctx != nil && ctx.node != nil {
		node = ctx.node
	}
	location := i.runtimeLocationFromNode(node)
	if location.Line == 0 && ctx != nil {
		for idx := len(ctx.callStack) - 1; idx >= 0; idx-- {
			location = i.runtimeLocationFromNode(ctx.callStack[idx])
			if location.Line > 0 {
				break
			}
		}
	}

	var notes []RuntimeDiagnosticNote
	if ctx != nil {
		for idx := len(ctx.callStack) - 1; idx >= 0 && len(notes) < maxDiagnosticNotes; idx-- {
			frame := ctx.callStack[idx]
			if frame == node {
				continue
			}
			notes = append(notes, RuntimeDiagnosticNote{
				Message:  fmt.Sprintf("while evaluating %s", frame.Name),
				Location: i.runtimeLocationFromNode(frame),
			})
		}
	}

	return RuntimeDiagnostic{
		Severity: rtErr.Kind.Severity(),
		Kind:     rtErr.Kind,
		Subject:  rtErr.Subject,
		Message:  rtErr.Message,
		Location: location,
		Notes:    notes,
	}
}

// DescribeRuntimeDiagnostic renders a diagnostic the way the CLI prints it.
func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if diag.Kind != "" {
		message = fmt.Sprintf("%s: %s", diag.Kind, message)
	}
	location := formatRuntimeLocation(diag.Location)
	prefix := "runtime: "
	if diag.Severity == driver.SeverityWarning {
		prefix = "warning: runtime: "
	}
	var b strings.Builder
	if location != "" {
		fmt.Fprintf(&b, "%s%s %s", prefix, location, message)
	} else {
		fmt.Fprintf(&b, "%s%s", prefix, message)
	}
	for _, note := range diag.Notes {
		noteLoc := formatRuntimeLocation(note.Location)
		if noteLoc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", noteLoc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

func (i *Interpreter) attachRuntimeContext(err *RuntimeError, state *evalState) *RuntimeError {
	if err == nil || err.context != nil {
		return err
	}
	err.context = &runtimeDiagnosticContext{
		node:      err.Node,
		callStack: state.snapshotCallStack(),
	}
	return err
}

// report records a non-fatal error or warning and logs it.
func (i *Interpreter) report(state *evalState, err *RuntimeError) {
	err = i.attachRuntimeContext(err, state)
	diag := i.BuildRuntimeDiagnostic(err)
	i.diagnostics = append(i.diagnostics, diag)
	i.logger.Debug("runtime diagnostic",
		slog.String("kind", string(diag.Kind)),
		slog.String("severity", string(diag.Severity)),
		slog.String("subject", diag.Subject),
		slog.Int("line", diag.Location.Line),
		slog.Int("column", diag.Location.Column),
		slog.String("message", diag.Message),
	)
}

func formatRuntimeLocation(loc driver.DiagnosticLocation) string {
	if loc.Path != "" {
		loc.Path = normalizeRuntimePath(loc.Path)
	}
	return driver.FormatLocation(loc)
}

func (i *Interpreter) runtimeLocationFromNode(node ast.Node) driver.DiagnosticLocation {
	if node == nil {
		return driver.DiagnosticLocation{}
	}
	span := node.Span()
	return driver.DiagnosticLocation{
		Path:      i.sourcePath,
		Line:      span.Start.Line,
		Column:    span.Start.Column,
		EndLine:   span.End.Line,
		EndColumn: span.End.Column,
	}
}

// normalizeRuntimePath shortens paths below the working directory to relative form.
func normalizeRuntimePath(raw string) string {
	if raw == "" || !filepath.IsAbs(raw) {
		return filepath.ToSlash(raw)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(raw)
	}
	rel, err := filepath.Rel(wd, raw)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(raw)
	}
	return filepath.ToSlash(rel)
}
