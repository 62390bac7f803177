// Package logging provides the server's leveled logger: a thin wrapper
// around stdlib log with level-gated sub-loggers.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level orders the four levels this server logs at.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps REDIKV_LOG_LEVEL values to a Level, defaulting to Info
// for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger wraps four *log.Logger instances, one per level, each with a
// bracketed level prefix.
type Logger struct {
	min   Level
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// New constructs a Logger writing to w at or above min.
func New(w io.Writer, min Level) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		min:   min,
		debug: log.New(w, "[DEBUG] ", flags),
		info:  log.New(w, "[INFO]  ", flags),
		warn:  log.New(w, "[WARN]  ", flags),
		error: log.New(w, "[ERROR] ", flags),
	}
}

// Default returns a Logger writing to stderr at the given level.
func Default(min Level) *Logger { return New(os.Stderr, min) }

func (l *Logger) Debugf(format string, args ...any) {
	if l.min <= LevelDebug {
		l.debug.Printf(format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	if l.min <= LevelInfo {
		l.info.Printf(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...any) {
	if l.min <= LevelWarn {
		l.warn.Printf(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...any) {
	if l.min <= LevelError {
		l.error.Printf(format, args...)
	}
}
