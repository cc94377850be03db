package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger wraps the standard library logger with structured logging methods
type Logger struct {
	logger  *log.Logger
	verbose bool
}

// New creates a new Logger instance. Debug output is enabled when the
// DEBUG environment variable is set to "true".
func New() *Logger {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a Logger writing to the given destination.
// CLI commands log to stderr so stdout stays reserved for the result payload.
func NewWithOutput(w io.Writer) *Logger {
	return &Logger{
		logger:  log.New(w, "", log.LstdFlags),
		verbose: os.Getenv("DEBUG") == "true",
	}
}

// Info logs an informational message with structured key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues...)
}

// Error logs an error message with structured key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues...)
}

// Debug logs a debug message with structured key-value pairs.
// Suppressed unless debug output was enabled at construction.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if !l.verbose {
		return
	}
	l.log("DEBUG", msg, keysAndValues...)
}

// log formats and outputs a log message with key-value pairs
// keysAndValues should be pairs like: "key1", value1, "key2", value2
func (l *Logger) log(level, msg string, keysAndValues ...interface{}) {
	// Start with level and message
	output := fmt.Sprintf("[%s] %s", level, msg)

	// Add key-value pairs
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := keysAndValues[i]
			value := keysAndValues[i+1]
			output += fmt.Sprintf(" %v=%v", key, value)
		}
	}

	l.logger.Println(output)
}
