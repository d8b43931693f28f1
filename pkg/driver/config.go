package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cilisp/interpreter-go/pkg/logging"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = "cilisp.yml"

// ErrConfigNotFound is returned by FindConfig when no config file exists up the tree.
var ErrConfigNotFound = errors.New(ConfigFileName + " not found")

// Config models cilisp.yml.
type Config struct {
	Path       string           `yaml:"-"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Log        logging.Config   `yaml:"log"`
}

// EvaluationConfig tunes the interpreter.
type EvaluationConfig struct {
	MaxDepth        int    `yaml:"max_depth"`
	MemoizeBindings *bool  `yaml:"memoize_bindings"`
	PrintPrecision  *int   `yaml:"print_precision"`
	Seed            uint64 `yaml:"seed"` // 0 picks a random seed
}

// DefaultConfig returns the settings used when no cilisp.yml is present.
func DefaultConfig() *Config {
	memoize := true
	precision := 2
	return &Config{
		Evaluation: EvaluationConfig{
			MaxDepth:        10000,
			MemoizeBindings: &memoize,
			PrintPrecision:  &precision,
		},
		Log: logging.DefaultConfig(),
	}
}

// Memoize reports whether bindings are evaluated at most once.
func (c EvaluationConfig) Memoize() bool {
	return c.MemoizeBindings == nil || *c.MemoizeBindings
}

// Precision returns the Double print precision.
func (c EvaluationConfig) Precision() int {
	if c.PrintPrecision == nil {
		return 2
	}
	return *c.PrintPrecision
}

// LoadConfig parses a config file from disk, layering it over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// DecodeConfig reads YAML config from r. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Evaluation.MaxDepth < 0 {
		return fmt.Errorf("evaluation.max_depth must be non-negative, got %d", c.Evaluation.MaxDepth)
	}
	if p := c.Evaluation.PrintPrecision; p != nil && (*p < 0 || *p > 17) {
		return fmt.Errorf("evaluation.print_precision must be between 0 and 17, got %d", *p)
	}
	if c.Log.Level != "" && !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// FindConfig walks from dir towards the filesystem root looking for cilisp.yml.
func FindConfig(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for current := abs; ; {
		candidate := filepath.Join(current, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrConfigNotFound
		}
		current = parent
	}
}
