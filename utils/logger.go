package utils

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger provides leveled, timestamped logging throughout the application.
type Logger struct {
	l *log.Logger
}

// NewLogger creates a Logger writing to stderr at the given level
// (debug, info, warn or error; anything else means info).
func NewLogger(level string) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a Logger writing to w.
func NewLoggerTo(w io.Writer, level string) *Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return &Logger{l: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           lvl,
	})}
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, "error")
}

// Named returns a child logger whose lines carry the given prefix.
func (l *Logger) Named(prefix string) *Logger {
	return &Logger{l: l.l.WithPrefix(prefix)}
}

func (l *Logger) Info(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.l.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.l.Debugf(format, args...)
}

// Printf logs at info level; it lets the Logger stand in wherever a
// Printf-style logger is expected (cron).
func (l *Logger) Printf(format string, args ...any) {
	l.l.Infof(format, args...)
}
