package main

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"cilisp/interpreter-go/pkg/driver"
	"cilisp/interpreter-go/pkg/interpreter"
)

func newInterpreter(cfg *driver.Config, logger *slog.Logger, functions interpreter.FunctionResolver, input interpreter.InputSource, stdout io.Writer) *interpreter.Interpreter {
	opts := interpreter.Options{
		Logger:          logger,
		Display:         interpreter.NewWriterDisplay(stdout, cfg.Evaluation.Precision()),
		Input:           input,
		Functions:       functions,
		MaxDepth:        cfg.Evaluation.MaxDepth,
		MemoizeBindings: cfg.Evaluation.Memoize(),
	}
	if seed := cfg.Evaluation.Seed; seed != 0 {
		opts.Random = rand.New(rand.NewPCG(seed, seed))
	}
	return interpreter.NewWithOptions(opts)
}
