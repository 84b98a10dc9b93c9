package common

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ParseLogLevel converts a config string to a LogLevel. Unknown values map to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Logger provides a centralized logging interface for loadsheet
type Logger struct {
	*slog.Logger
	level LogLevel
}

// NewLogger creates a new structured text logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return newLoggerWithHandler(slog.NewTextHandler(os.Stdout, handlerOptions(level)), level)
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return newLoggerWithHandler(slog.NewJSONHandler(os.Stdout, handlerOptions(level)), level)
}

// NewColorLogger creates a structured logger with colorized text output.
func NewColorLogger(level LogLevel) *Logger {
	return newLoggerWithHandler(NewColorHandler(os.Stdout, handlerOptions(level)), level)
}

// NewLoggerForFormat builds a logger from config strings ("text", "json", "color").
func NewLoggerForFormat(format string, level LogLevel) *Logger {
	switch format {
	case "json":
		return NewJSONLogger(level)
	case "color":
		return NewColorLogger(level)
	default:
		return NewLogger(level)
	}
}

// NewTestLogger writes to the provided writer; used by tests to capture output.
func NewTestLogger(w io.Writer, level LogLevel) *Logger {
	return newLoggerWithHandler(slog.NewTextHandler(w, handlerOptions(level)), level)
}

func handlerOptions(level LogLevel) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level.ToSlogLevel()}
}

func newLoggerWithHandler(h slog.Handler, level LogLevel) *Logger {
	return &Logger{Logger: slog.New(h), level: level}
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		level:  l.level,
	}
}

// WithScenario returns a logger with scenario context
func (l *Logger) WithScenario(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("scenario", name),
		level:  l.level,
	}
}

// WithRow returns a logger with source row context
func (l *Logger) WithRow(index int) *Logger {
	return &Logger{
		Logger: l.Logger.With("row", index),
		level:  l.level,
	}
}

// WithEngine returns a logger with load-engine context
func (l *Logger) WithEngine(engine string) *Logger {
	return &Logger{
		Logger: l.Logger.With("engine", engine),
		level:  l.level,
	}
}

// Global default logger instance
var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}
