package main

import (
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "cilisp 0.1.0-dev"

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
	modeDump
)

// cli carries the process streams so commands can be driven from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return runWithIO(args, os.Stdin, os.Stdout, os.Stderr)
}

func runWithIO(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	flags, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		c.printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runEntry(remaining[1:], flags, modeRun)
	case "check":
		return c.runEntry(remaining[1:], flags, modeCheck)
	case "dump":
		return c.runEntry(remaining[1:], flags, modeDump)
	default:
		return c.runEntry(remaining, flags, modeRun)
	}
}
