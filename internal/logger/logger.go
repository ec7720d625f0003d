package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger and provides structured logging capabilities.
type Logger struct {
	zlog zerolog.Logger
}

// Options controls where and how verbosely a Logger writes.
type Options struct {
	// Env selects the output format: "development" pretty-prints, anything else writes JSON.
	Env string
	// Level overrides the environment's default level ("debug", "info", "warn", "error").
	Level string
	// Output defaults to os.Stdout. The CLI passes os.Stderr so summaries on stdout stay clean.
	Output io.Writer
}

// New creates a new Logger instance configured for the given environment.
// In development mode, it outputs pretty-printed colored logs.
// In production mode, it outputs JSON formatted logs.
func New(env string) *Logger {
	return NewWithOptions(Options{Env: env})
}

// NewWithLevel creates a Logger for env with an explicit minimum level.
func NewWithLevel(env, level string) *Logger {
	return NewWithOptions(Options{Env: env, Level: level})
}

// NewWithOptions creates a Logger from opts.
func NewWithOptions(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var output io.Writer
	if opts.Env == "development" {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	} else {
		output = out
	}

	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if opts.Env == "development" {
		level = zerolog.DebugLevel
	}
	if opts.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	event := l.zlog.Debug()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	event := l.zlog.Info()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	event := l.zlog.Warn()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Error logs an error message with an error and optional fields.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	event := l.zlog.Error().Err(err)
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Fatal logs a fatal message and exits the application.
func (l *Logger) Fatal(msg string, err error, fields map[string]interface{}) {
	event := l.zlog.Fatal().Err(err)
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// With creates a child logger with additional context fields.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("request_id", requestID).Logger(),
	}
}

// WithRunID creates a child logger tagged with a dataset build run ID.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("run_id", runID).Logger(),
	}
}

// Level returns the minimum level the logger emits.
func (l *Logger) Level() string {
	return l.zlog.GetLevel().String()
}

// GetZerolog returns the underlying zerolog.Logger for advanced usage.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
