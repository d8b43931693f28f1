package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"cilisp/interpreter-go/pkg/interpreter"
	"cilisp/interpreter-go/pkg/runtime"
)

const readPrompt = "read := "

// maxReadLine bounds a single piped read token.
const maxReadLine = 1 << 20

// newInputSource prompts through liner when stdin is a terminal and reads lines otherwise.
// The returned closer restores the terminal.
func newInputSource(stdin io.Reader) (interpreter.InputSource, io.Closer) {
	if file, ok := stdin.(*os.File); ok && isTerminal(file) {
		ln := liner.NewLiner()
		ln.SetCtrlCAborts(true)
		return &promptInput{ln: ln}, ln
	}
	return interpreter.NewLineInputSize(stdin, maxReadLine), nopCloser{}
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

type promptInput struct {
	ln *liner.State
}

func (p *promptInput) ReadNumber() (runtime.Result, error) {
	line, err := p.ln.Prompt(readPrompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return runtime.Sentinel(), fmt.Errorf("%w: read aborted", interpreter.ErrInvalidInput)
		}
		return runtime.Sentinel(), err
	}
	if strings.TrimSpace(line) != "" {
		p.ln.AppendHistory(line)
	}
	return interpreter.ParseNumberToken(line)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
