package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Option attaches structured fields to a log entry
type Option func(map[string]interface{})

// WithField attaches a single key/value pair to a log entry
func WithField(key string, value interface{}) Option {
	return func(fields map[string]interface{}) {
		fields[key] = value
	}
}

// WithFields attaches multiple key/value pairs to a log entry
func WithFields(m map[string]interface{}) Option {
	return func(fields map[string]interface{}) {
		for k, v := range m {
			fields[k] = v
		}
	}
}

// Logger is a leveled logger with structured fields
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *os.File
}

// New creates a logger that writes to stderr at the given minimum level
func New(level Level) *Logger {
	return &Logger{level: level, out: os.Stderr}
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, opts ...Option) {
	l.log(LevelDebug, msg, opts...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, opts ...Option) {
	l.log(LevelInfo, msg, opts...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, opts ...Option) {
	l.log(LevelWarn, msg, opts...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, opts ...Option) {
	l.log(LevelError, msg, opts...)
}

func (l *Logger) log(level Level, msg string, opts ...Option) {
	if level < l.level {
		return
	}

	fields := make(map[string]interface{})
	for _, opt := range opts {
		opt(fields)
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(msg)

	// Sorted for deterministic output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.WriteString(b.String())
}
