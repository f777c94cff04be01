package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the application logging contract.
// Implementations should support standard log levels and be safe for concurrent use.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a ZeroLogger writing human-readable lines to w at the given level.
func New(w io.Writer, level zerolog.Level) *ZeroLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return &ZeroLogger{
		logger: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// NewStderr creates a ZeroLogger on stderr so log lines stay out of the
// operator dialogue on stdout.
func NewStderr(level zerolog.Level) *ZeroLogger {
	return New(os.Stderr, level)
}

// ParseLevel maps a level name such as "debug" or "warn" to a zerolog.Level.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if level == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

func (l *ZeroLogger) Info(msg string, args ...any) {
	l.logger.Info().Msgf(msg, args...)
}

func (l *ZeroLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Msgf(msg, args...)
}

func (l *ZeroLogger) Error(msg string, args ...any) {
	l.logger.Error().Msgf(msg, args...)
}

func (l *ZeroLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Msgf(msg, args...)
}

// Default provides a global default logger at warn level on stderr.
var Default Logger = NewStderr(zerolog.WarnLevel)
