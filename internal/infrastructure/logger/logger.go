package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // json, console
	Output io.Writer // defaults to stdout
}

// New creates a new zerolog logger based on config.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "gowallet").
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
