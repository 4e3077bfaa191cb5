// Package logger provides logging for the reshelve CLI.
//
// Two destinations are kept. The console (stderr by default) only receives
// messages when verbose mode is enabled via the --verbose flag. The run log,
// installed with OpenFile or SetSink, receives every Info, Warn and Error
// line regardless of verbosity: one line per file handled.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	sink    io.Writer
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetSink sets the run log writer. Nil disables the run log.
func SetSink(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = w
}

// OpenFile truncates path and installs it as the run log.
// The returned closer uninstalls the sink and closes the file.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetSink(f)
	return closerFunc(func() error {
		mu.Lock()
		if sink == f {
			sink = nil
		}
		mu.Unlock()
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info records an informational message.
func Info(format string, args ...any) {
	write("INFO", format, args...)
}

// Warn records a warning.
func Warn(format string, args ...any) {
	write("WARN", format, args...)
}

// Error records an error.
func Error(format string, args ...any) {
	write("ERROR", format, args...)
}

func write(level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	line := fmt.Sprintf("["+level+"] "+format+"\n", args...)
	if sink != nil {
		io.WriteString(sink, line) //nolint:errcheck // best effort, a broken log must not stop a run
	}
	if verbose {
		io.WriteString(output, line) //nolint:errcheck // best effort
	}
}
