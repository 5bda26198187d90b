package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger writes user-facing progress and diagnostics to stderr.
type Logger struct {
	debug   bool
	noColor bool
}

// New creates a logger. Debug messages are suppressed unless debug is set.
func New(debug, noColor bool) *Logger {
	return &Logger{debug: debug, noColor: noColor}
}

// Info logs a progress message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("\033[32m✓\033[0m", "✓", format, args...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("\033[33m⚠\033[0m", "⚠", format, args...)
}

// Error logs a failure.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m✗\033[0m", "✗", format, args...)
}

// Debug logs a diagnostic message when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("\033[36m[DEBUG]\033[0m", "[DEBUG]", format, args...)
}

func (l *Logger) emit(colored, plain, format string, args ...interface{}) {
	prefix := colored
	if l.noColor {
		prefix = plain
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Secret wraps a sensitive value so it can never leak through formatting.
type Secret string

// String implements fmt.Stringer, always returning a redacted value.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string { return "[REDACTED]" }

// MaskKey renders an API key as its first and last four characters,
// suitable for identifying which key is in use without exposing it.
// Keys too short to mask safely are fully redacted.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "[REDACTED]"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// Redact replaces occurrences of the given secrets in s with [REDACTED].
func Redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if len(secret) > 3 {
			s = strings.ReplaceAll(s, secret, "[REDACTED]")
		}
	}
	return s
}
