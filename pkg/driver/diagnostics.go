package driver

import (
	"fmt"
	"strings"
)

// DiagnosticSeverity classifies diagnostics surfaced to the user.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// DiagnosticLocation points at a span inside a source document.
type DiagnosticLocation struct {
	Path      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// FormatLocation renders path:line:column, dropping the parts that are unknown.
func FormatLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}

// DocumentError reports a malformed AST document.
type DocumentError struct {
	Message  string
	Location DiagnosticLocation
	Err      error
}

func (e *DocumentError) Error() string {
	if e == nil {
		return ""
	}
	message := e.Message
	if e.Err != nil {
		message = fmt.Sprintf("%s: %v", message, e.Err)
	}
	if loc := FormatLocation(e.Location); loc != "" {
		return fmt.Sprintf("document: %s: %s", loc, message)
	}
	return "document: " + message
}

func (e *DocumentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
