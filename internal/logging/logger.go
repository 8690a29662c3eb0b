package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/statuswatch/status-plane/internal/config"
)

const (
	defaultLevel = zerolog.InfoLevel
	serviceName  = "status-plane"
)

// NewLogger builds the root logger for the process. Subsystems derive
// their own tagged loggers from it via Component.
func NewLogger(cfg config.Config) (zerolog.Logger, error) {
	level := defaultLevel
	if cfg.Logging.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Logging.Level, err)
		}

		level = l
	}

	out := io.Writer(os.Stdout)
	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return logger, nil
}

// Component derives a child logger tagged with the subsystem name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Fatal calls Fatal on the default zerolog logger. It's intended to be
// used in panic recovery or other places where a logger instance isn't
// available.
func Fatal(err any, msg string) {
	logger := log.With().
		Timestamp().
		Caller().
		Logger()

	switch v := err.(type) {
	case error:
		logger.Fatal().
			CallerSkipFrame(2).
			Err(v).
			Msg(msg)
	default:
		logger.Fatal().
			CallerSkipFrame(2).
			Interface("error", err).
			Msg(msg)
	}
}
