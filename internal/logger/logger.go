// Package logger writes coursemate's diagnostic output to stderr.
//
// Everything except Error is silent unless --verbose is set. The query loop
// reports its state changes through Transition and each tool dispatch
// through Debug.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns the gated levels on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log output. Tests pass a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// write formats one record. gated records are dropped in quiet mode.
func write(gated bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, format, args...)
}

func record(l level, gated bool, format string, args []any) {
	write(gated, "["+string(l)+"] "+format+"\n", args...)
}

func Debug(format string, args ...any) { record(levelDebug, true, format, args) }

func Info(format string, args ...any) { record(levelInfo, true, format, args) }

func Warn(format string, args ...any) { record(levelWarn, true, format, args) }

// Error is printed in quiet mode too.
func Error(format string, args ...any) { record(levelError, false, format, args) }

// Section prints a banner separating phases such as ingest and query.
func Section(name string) {
	write(true, "\n=== %s ===\n", name)
}

// Transition records a state change of a long-running flow.
func Transition(flow, from, to string) {
	write(true, "[%s] %s: %s -> %s\n", levelDebug, flow, from, to)
}
