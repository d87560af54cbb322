// Package logger writes coursemate's diagnostic lines to stderr.
//
// Debug, Info, Warn, Section and Timing print only after SetVerbose(true),
// which the --verbose flag turns on. Error always prints.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level tags a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) tag() string {
	switch l {
	case LevelInfo:
		return "[INFO] "
	case LevelWarn:
		return "[WARN] "
	case LevelError:
		return "[ERROR] "
	default:
		return "[DEBUG] "
	}
}

var (
	verbose atomic.Bool

	// mu guards out and serialises writes to it.
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

func SetVerbose(v bool) { verbose.Store(v) }

func IsVerbose() bool { return verbose.Load() }

// SetOutput redirects every line to w. Tests use it to capture logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// Enabled reports whether a line at l would be written.
func Enabled(l Level) bool {
	return l >= LevelError || verbose.Load()
}

func write(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	line := l.tag() + fmt.Sprintf(format, args...) + "\n"
	mu.Lock()
	defer mu.Unlock()
	_, _ = io.WriteString(out, line)
}

func Debug(format string, args ...any) { write(LevelDebug, format, args...) }

func Info(format string, args ...any) { write(LevelInfo, format, args...) }

// Warn is for soft failures that fall back to an empty or partial result.
func Warn(format string, args ...any) { write(LevelWarn, format, args...) }

func Error(format string, args ...any) { write(LevelError, format, args...) }

// Section prints a blank line and a banner to separate pipeline stages.
func Section(name string) {
	if !Enabled(LevelDebug) {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "\n=== %s ===\n", name)
}

// Timing logs the time elapsed since start at debug level:
//
//	defer logger.Timing("embed batch", time.Now())
func Timing(label string, start time.Time) {
	write(LevelDebug, "%s took %s", label, time.Since(start).Round(time.Millisecond))
}
