// Package logger configures the process-wide slog logger.
//
// Command output meant for the user (echoed commands, next-step hints,
// prompts) is written directly by the CLI. The logger carries diagnostics
// only and always writes to stderr unless a test redirects it.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and level for Init.
type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns an info-level text logger on stderr.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		AddSource: false,
	}
}

// ForCLI returns the configuration used by the root command: debug level
// when verbose, JSON records when the command output is JSON.
func ForCLI(verbose, jsonOutput bool) Config {
	cfg := DefaultConfig()
	if verbose {
		cfg.Level = slog.LevelDebug
	} else {
		cfg.Level = slog.LevelWarn
	}
	if jsonOutput {
		cfg.Format = "json"
	}
	return cfg
}

// New builds a logger without touching the default.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(handler)
}

// Init installs a logger built from cfg as the slog default and returns it.
func Init(cfg Config) *slog.Logger {
	l := New(cfg)
	slog.SetDefault(l)
	return l
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
