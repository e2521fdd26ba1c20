// Package logging builds the slog logger used by the host tools. The driver packages never log.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
)

const (
	EnvLogLevel  = "DS1302_LOG_LEVEL"
	EnvLogFormat = "DS1302_LOG_FORMAT"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	// Level is one of debug, info, warn or error. Defaults to info.
	Level string `toml:"level"`
	// Format is FormatConsole (default) or FormatJSON.
	Format string `toml:"format"`
	// Output defaults to os.Stderr, leaving stdout to the terminal.
	Output io.Writer `toml:"-"`
}

// New returns a logger for cfg, with DS1302_LOG_LEVEL and DS1302_LOG_FORMAT taking precedence.
func New(cfg Config) *slog.Logger {
	applyEnvOverrides(&cfg)
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := &slog.LevelVar{}
	level.Set(ParseLevel(cfg.Level))

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	} else {
		handler = console.NewHandler(cfg.Output, &console.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(handler)
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Format = v
	}
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
