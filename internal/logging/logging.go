// Package logging builds the service logger. It provides a compact
// single-line format for development and a JSON format for log aggregation,
// both configurable through environment variables or functional options.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output format.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2025-03-01 10:40:35  INFO converted document {"input":"..."}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a format string. Unknown values fall back to
// FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads the log format from FLATSHEET_LOG_FORMAT, falling back
// to LOG_FORMAT, defaulting to FormatCompact.
func FormatFromEnv() Format {
	if v := os.Getenv("FLATSHEET_LOG_FORMAT"); v != "" {
		return ParseFormat(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		return ParseFormat(v)
	}
	return FormatCompact
}

// ParseLevel parses a log level string (case-insensitive). Supported values:
// DEBUG, INFO, WARN, WARNING, ERROR. Unknown values fall back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv reads the log level from FLATSHEET_LOG_LEVEL, falling back to
// LOG_LEVEL, defaulting to INFO.
func LevelFromEnv() slog.Level {
	if v := os.Getenv("FLATSHEET_LOG_LEVEL"); v != "" {
		return ParseLevel(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		return ParseLevel(v)
	}
	return slog.LevelInfo
}

// Option configures the logger built by New.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the output writer. Default: os.Stdout.
func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// New builds a logger. Without options the format and level come from the
// environment (FLATSHEET_LOG_FORMAT / FLATSHEET_LOG_LEVEL, with LOG_FORMAT /
// LOG_LEVEL fallbacks) and output goes to stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(cfg.output, &slog.HandlerOptions{
			Level: cfg.level,
		}))
	}
	return slog.New(NewCompactHandler(cfg.output, cfg.level))
}
