// Package logging provides the logging interface used across lsmtable.
//
// Design: four-level interface (Error, Warn, Info, Debug) — rockyardkv's
// shape minus Fatal, since a storage-core library must return errors to
// its caller rather than terminate the process. Callers can still wrap
// slog/zap without changing this package's surface.
//
// Log format: YYYY/MM/DD HH:MM:SS LEVEL [component] message
//
// Reference: aalhour/rockyardkv internal/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
)

// Level represents the logging level.
type Level int

const (
	// LevelError logs only errors.
	LevelError Level = iota
	// LevelWarn logs warnings and errors.
	LevelWarn
	// LevelInfo logs info, warnings, and errors.
	LevelInfo
	// LevelDebug logs everything including debug messages.
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface used by sstable and cache.
//
// Implementations must be safe for concurrent use: block builds and cache
// loads may log from multiple goroutines.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// Namespace prefixes for log messages.
const (
	// NSSSTable is the namespace for SST build/open operations.
	NSSSTable = "[sstable] "
	// NSBlockCache is the namespace for block cache operations.
	NSBlockCache = "[blockcache] "
)

// DefaultLogger writes to a configured output at a fixed level.
// It is stateless (aside from the wrapped *log.Logger, which is itself
// safe for concurrent use) and safe for concurrent use.
type DefaultLogger struct {
	logger *log.Logger
	level  Level
}

// NewDefaultLogger creates a logger that writes to stderr at the given level.
func NewDefaultLogger(level Level) *DefaultLogger {
	return NewLogger(os.Stderr, level)
}

// NewLogger creates a logger writing to w at the given level.
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{logger: log.New(w, "", log.LstdFlags), level: level}
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	if l.level >= LevelError {
		_ = l.logger.Output(2, "ERROR "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.level >= LevelWarn {
		_ = l.logger.Output(2, "WARN "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.level >= LevelInfo {
		_ = l.logger.Output(2, "INFO "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.level >= LevelDebug {
		_ = l.logger.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}

// discard is a Logger that drops everything.
type discard struct{}

// Discard is a Logger that drops every message.
var Discard Logger = discard{}

func (discard) Errorf(string, ...any) {}
func (discard) Warnf(string, ...any)  {}
func (discard) Infof(string, ...any)  {}
func (discard) Debugf(string, ...any) {}

// IsNil returns true if l is nil or a typed-nil pointer wrapped in the
// interface (which would otherwise panic on first use).
func IsNil(l Logger) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// OrDefault returns l if it is usable, otherwise Discard.
func OrDefault(l Logger) Logger {
	if IsNil(l) {
		return Discard
	}
	return l
}
