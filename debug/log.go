package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool

	// recent warnings, kept even when file logging is off
	warnings []string
)

// MaxWarnings is how many warnings Recent keeps
const MaxWarnings = 32

// Enable starts debug logging to ~/.config/go-variations/debug.log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(homeDir, ".config", "go-variations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	write("debug", "=== Debug logging started ===")

	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// Warn logs a recoverable problem and remembers it for the UI
func Warn(category, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()

	warnings = append(warnings, fmt.Sprintf("%s: %s", category, msg))
	if len(warnings) > MaxWarnings {
		warnings = warnings[len(warnings)-MaxWarnings:]
	}

	if enabled && file != nil {
		write("warn", category+": "+msg)
	}
}

// Recent returns up to n of the latest warnings, oldest first
func Recent(n int) []string {
	mu.Lock()
	defer mu.Unlock()

	if n > len(warnings) {
		n = len(warnings)
	}
	out := make([]string, n)
	copy(out, warnings[len(warnings)-n:])
	return out
}

// ClearWarnings drops remembered warnings
func ClearWarnings() {
	mu.Lock()
	warnings = nil
	mu.Unlock()
}

// write assumes mu is held
func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, msg)
	file.Sync() // flush immediately so we see logs even on crash
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
