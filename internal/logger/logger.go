// Package logger prints pipeline diagnostics to stderr when the
// --verbose flag is set. Nothing is written otherwise.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles diagnostic output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether diagnostics are enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects diagnostics away from stderr. Tests use this to
// capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one tagged line while holding the read lock.
func emit(tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[%s] "+format+"\n", append([]any{tag}, args...)...)
	}
}

// Debug logs fine-grained pipeline detail.
func Debug(format string, args ...any) { emit("DEBUG", format, args...) }

// Info logs pipeline progress.
func Info(format string, args ...any) { emit("INFO", format, args...) }

// Warn logs recoverable problems.
func Warn(format string, args ...any) { emit("WARN", format, args...) }

// Section marks the start of a pipeline stage with an underlined
// heading, separating it from the preceding output.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n%s\n%s\n", name, strings.Repeat("-", len(name)))
	}
}
