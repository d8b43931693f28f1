package main

import "fmt"

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeCheck:
		return "cilisp check"
	case modeDump:
		return "cilisp dump"
	default:
		return "cilisp run"
	}
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  cilisp [--config=path] [--log-level=level] run <program.yml>")
	fmt.Fprintln(c.stderr, "  cilisp [--config=path] [--log-level=level] <program.yml>")
	fmt.Fprintln(c.stderr, "  cilisp [--config=path] [--log-level=level] check <program.yml>")
	fmt.Fprintln(c.stderr, "  cilisp [--config=path] [--log-level=level] dump <program.yml>")
	fmt.Fprintln(c.stderr, "  cilisp --version")
}
