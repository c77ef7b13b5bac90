package config

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Logger builds the process logger writing to w. Production defaults to
// JSON lines; everything else gets colored tint output with source lines.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	format := c.Log.Format
	if format == "" {
		format = LogFormatText
		if c.IsProduction() {
			format = LogFormatJSON
		}
	}

	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  !c.IsProduction(),
		TimeFormat: "15:04:05.000",
		NoColor:    c.IsProduction(),
	}))
}
