package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Option selects an optional category of diagnostic output.
type Option uint32

// Log options. LogErrors is always honoured; the rest gate Trace output.
const (
	LogErrors Option = 1 << iota
	LogOrdinanceAPI
	LogPropertyAPI
	LogDumpRegisteredOrdinances

	LogNone Option = 0
	LogAll         = LogErrors | LogOrdinanceAPI | LogPropertyAPI | LogDumpRegisteredOrdinances
)

var optionNames = map[string]Option{
	"none":                       LogNone,
	"errors":                     LogErrors,
	"ordinance_api":              LogOrdinanceAPI,
	"property_api":               LogPropertyAPI,
	"dump_registered_ordinances": LogDumpRegisteredOrdinances,
	"all":                        LogAll,
}

// ParseOptions parses a comma-separated list of option names such as
// "errors,ordinance_api".
func ParseOptions(s string) (Option, error) {
	opts := LogNone
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		opt, ok := optionNames[name]
		if !ok {
			return LogNone, fmt.Errorf("unknown log option %q", name)
		}
		opts |= opt
	}
	return opts, nil
}

// Logger wraps zerolog.Logger and provides structured logging capabilities.
type Logger struct {
	zlog    zerolog.Logger
	options Option
}

// New creates a new Logger instance configured for the given environment.
// In development mode, it outputs pretty-printed colored logs.
// In production mode, it outputs JSON formatted logs.
func New(env string) *Logger {
	var output io.Writer

	if env == "development" {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	} else {
		// JSON output for production
		output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	// Development gets debug output so Trace categories are visible
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}

	return NewWithWriter(output, level)
}

// NewWithWriter creates a Logger writing JSON lines to w at the given level.
// Only LogErrors is enabled; use WithOptions to turn on trace categories.
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog, options: LogErrors}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// WithOptions returns a copy of the logger with the given trace options.
func (l *Logger) WithOptions(opts Option) *Logger {
	return &Logger{zlog: l.zlog, options: opts}
}

// Options returns the enabled trace options.
func (l *Logger) Options() Option {
	return l.options
}

// Enabled reports whether all bits of opt are enabled.
func (l *Logger) Enabled(opt Option) bool {
	return opt != LogNone && l.options&opt == opt
}

// Trace logs a debug message when the given option is enabled.
func (l *Logger) Trace(opt Option, msg string, fields map[string]interface{}) {
	if !l.Enabled(opt) {
		return
	}
	l.Debug(msg, fields)
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
// Errors are suppressed only when LogErrors has been switched off.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	if !l.Enabled(LogErrors) {
		return
	}
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
	return &Logger{zlog: ctx.Logger(), options: l.options}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		zlog:    l.zlog.With().Str("request_id", requestID).Logger(),
		options: l.options,
	}
}

// WithComponent creates a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		zlog:    l.zlog.With().Str("component", name).Logger(),
		options: l.options,
	}
}

// GetZerolog returns the underlying zerolog.Logger for advanced usage.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
