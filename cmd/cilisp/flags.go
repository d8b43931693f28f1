package main

import (
	"fmt"
	"strings"

	"cilisp/interpreter-go/pkg/logging"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

// parseGlobalFlags strips the flags accepted before the command name.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--log-level":
		default:
			remaining = append(remaining, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("%s expects a value", name)
			}
			value = args[i+1]
			i++
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return flags, nil, fmt.Errorf("%s expects a value", name)
		}
		switch name {
		case "--config":
			flags.configPath = value
		case "--log-level":
			if !logging.ValidLevel(value) {
				return flags, nil, fmt.Errorf("unknown --log-level value '%s' (expected debug, info, warn or error)", value)
			}
			flags.logLevel = value
		}
	}
	return flags, remaining, nil
}
