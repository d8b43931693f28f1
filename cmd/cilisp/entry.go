package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cilisp/interpreter-go/pkg/driver"
	"cilisp/interpreter-go/pkg/interpreter"
	"cilisp/interpreter-go/pkg/logging"
)

func (c *cli) runEntry(args []string, flags globalFlags, mode executionMode) int {
	if len(args) == 0 {
		fmt.Fprintf(c.stderr, "%s requires a program file\n", modeCommandLabel(mode))
		return 1
	}
	if len(args) > 1 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}
	entry := strings.TrimSpace(args[0])
	if entry == "" {
		fmt.Fprintf(c.stderr, "%s requires a program file\n", modeCommandLabel(mode))
		return 1
	}

	cfg, err := c.loadConfig(entry, flags)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to load config: %v\n", err)
		return 1
	}
	logger, logCloser := logging.Init(cfg.Log, c.stderr)
	defer logCloser.Close()
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	doc, err := driver.LoadDocument(entry)
	if err != nil {
		var docErr *driver.DocumentError
		if errors.As(err, &docErr) {
			fmt.Fprintln(c.stderr, docErr.Error())
			return 1
		}
		fmt.Fprintf(c.stderr, "failed to load program: %v\n", err)
		return 1
	}
	defer doc.Release()
	logger.Debug("document loaded", "path", doc.Path, "functions", len(doc.Functions))

	if mode == modeDump {
		encoded, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintf(c.stderr, "failed to encode program: %v\n", err)
			return 1
		}
		fmt.Fprintln(c.stdout, string(encoded))
		return 0
	}

	table := interpreter.NewFunctionTable()
	for _, def := range doc.Functions {
		if err := table.Define(def); err != nil {
			fmt.Fprintf(c.stderr, "failed to define function: %v\n", err)
			return 1
		}
	}

	input, inputCloser := newInputSource(c.stdin)
	defer inputCloser.Close()

	interp := newInterpreter(cfg, logger, table, input, c.stdout)
	interp.SetSourcePath(doc.Path)

	if mode == modeCheck {
		return c.reportCheck(interp, doc)
	}

	result, evalErr := interp.Evaluate(doc.Program)
	c.printDiagnostics(interp.Diagnostics())
	if evalErr != nil {
		fmt.Fprintln(c.stderr, interpreter.DescribeRuntimeDiagnostic(interp.BuildRuntimeDiagnostic(evalErr)))
		return 1
	}
	fmt.Fprintf(c.stdout, "=> %s\n", result.Describe(cfg.Evaluation.Precision()))
	return 0
}

func (c *cli) reportCheck(interp *interpreter.Interpreter, doc *driver.Document) int {
	diags := interp.Check(doc.Program)
	for _, def := range doc.Functions {
		diags = append(diags, interp.CheckFunction(def)...)
	}
	c.printDiagnostics(diags)
	for _, diag := range diags {
		if diag.Severity == driver.SeverityError {
			return 1
		}
	}
	fmt.Fprintln(c.stdout, "check: ok")
	return 0
}

func (c *cli) printDiagnostics(diags []interpreter.RuntimeDiagnostic) {
	for _, diag := range diags {
		fmt.Fprintln(c.stderr, interpreter.DescribeRuntimeDiagnostic(diag))
	}
}

// loadConfig honours --config, then the nearest cilisp.yml above the program, then defaults.
func (c *cli) loadConfig(entry string, flags globalFlags) (*driver.Config, error) {
	var cfg *driver.Config
	switch {
	case flags.configPath != "":
		loaded, err := driver.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		dir := filepath.Dir(entry)
		path, err := driver.FindConfig(dir)
		switch {
		case err == nil:
			loaded, err := driver.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		case errors.Is(err, driver.ErrConfigNotFound):
			cfg = driver.DefaultConfig()
		default:
			return nil, err
		}
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}
