package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps debug|info|warn|error to a Level; anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

type Logger interface {
	DebugEnabled() bool
	SetLevel(level Level)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StdLogger writes debug/info to one writer and warn/error to another.
type StdLogger struct {
	mu     sync.Mutex
	level  Level
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// New returns a StdLogger writing to stdout and stderr.
func New(prefix string, level Level) *StdLogger {
	return NewWriters(prefix, level, os.Stdout, os.Stderr)
}

func NewWriters(prefix string, level Level, out, errOut io.Writer) *StdLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &StdLogger{
		level:  level,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *StdLogger) DebugEnabled() bool {
	return l.enabled(LevelDebug)
}

func (l *StdLogger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *StdLogger) enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func (l *StdLogger) format(level Level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	}
	return fmt.Sprintf("%s: %s", level, msg)
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if l.enabled(LevelDebug) {
		l.out.Print(l.format(LevelDebug, format, args...))
	}
}

func (l *StdLogger) Infof(format string, args ...any) {
	if l.enabled(LevelInfo) {
		l.out.Print(l.format(LevelInfo, format, args...))
	}
}

func (l *StdLogger) Warnf(format string, args ...any) {
	if l.enabled(LevelWarn) {
		l.err.Print(l.format(LevelWarn, format, args...))
	}
}

func (l *StdLogger) Errorf(format string, args ...any) {
	if l.enabled(LevelError) {
		l.err.Print(l.format(LevelError, format, args...))
	}
}

type nopLogger struct{}

// Nop discards everything. Handy in tests and as a nil fallback.
func Nop() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool        { return false }
func (nopLogger) SetLevel(Level)            {}
func (nopLogger) Debugf(string, ...any)     {}
func (nopLogger) Infof(string, ...any)      {}
func (nopLogger) Warnf(string, ...any)      {}
func (nopLogger) Errorf(string, ...any)     {}
