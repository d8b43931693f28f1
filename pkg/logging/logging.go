package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the process logger.
type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	IncludeSrc bool   `yaml:"include_src"`
	ToFile     bool   `yaml:"to_file"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxAge     int    `yaml:"max_age"`  // days
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig logs warnings and above as text.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		Format:     "text",
		Filename:   "cilisp.log",
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 3,
	}
}

// New builds a logger writing to w, and additionally to a rotating file when cfg.ToFile
// is set. The returned closer releases the file target and is never nil.
func New(cfg Config, w io.Writer) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{
		Level:     LevelFromString(cfg.Level),
		AddSource: cfg.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.Replace(source.Function, "cilisp/interpreter-go", "", -1)
				}
			}
			return a
		},
	}

	var closer io.Closer = nopCloser{}
	target := w
	if cfg.ToFile && cfg.Filename != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		target = io.MultiWriter(w, file)
		closer = file
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(target, opts)
	} else {
		handler = slog.NewTextHandler(target, opts)
	}
	return slog.New(handler), closer
}

// Init builds the logger and installs it as the slog default.
func Init(cfg Config, w io.Writer) (*slog.Logger, io.Closer) {
	logger, closer := New(cfg, w)
	slog.SetDefault(logger)
	return logger, closer
}

func LevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether level is one LevelFromString understands.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
