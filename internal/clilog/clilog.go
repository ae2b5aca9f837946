// Package clilog provides cmd/minicc's leveled logger. The core compiler
// packages (lexer, parser, typechecker, optimizer, analyzer, codegen,
// compiler) are pure functions with no logging side effects — spec.md §5's
// "a compile is a pure function of the source buffer and the optimisation
// level" — so clilog is only ever imported by cmd/minicc itself.
package clilog

import (
	"fmt"
	"time"
)

// Logger is a small timestamp-prefixed Printf-style leveled logger.
type Logger struct {
	Verbose   bool
	DebugMode bool
}

// New creates a Logger.
func New(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, DebugMode: debug}
}

func (l *Logger) ts() string { return time.Now().Format("15:04:05") }

// Info logs an informational message, only when Verbose is set.
func (l *Logger) Info(format string, args ...any) {
	if l.Verbose {
		fmt.Printf("[INFO] %s: %s\n", l.ts(), fmt.Sprintf(format, args...))
	}
}

// Debug logs a debug message, only when DebugMode is set.
func (l *Logger) Debug(format string, args ...any) {
	if l.DebugMode {
		fmt.Printf("[DEBUG] %s: %s\n", l.ts(), fmt.Sprintf(format, args...))
	}
}

// Warn always logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	fmt.Printf("[WARN] %s: %s\n", l.ts(), fmt.Sprintf(format, args...))
}

// Error always logs an error message.
func (l *Logger) Error(format string, args ...any) {
	fmt.Printf("[ERROR] %s: %s\n", l.ts(), fmt.Sprintf(format, args...))
}
