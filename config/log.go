package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// UnmarshalText implements encoding.TextUnmarshaler for LogFormat.
func (f *LogFormat) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "text", "json":
		*f = LogFormat(v)
		return nil
	default:
		return fmt.Errorf("invalid LogFormat: %q (valid options: text, json)", v)
	}
}

// LogConfig controls diagnostic logging. Logs go to stderr so command output stays clean.
type LogConfig struct {
	Level  slog.Level `env:"LOG_LEVEL"  envDefault:"warn"`
	Format LogFormat  `env:"LOG_FORMAT" envDefault:"text"`
}
