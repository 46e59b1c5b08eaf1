// Package logger provides leveled logging for the shop engine and its host.
// Every rejected purchase and persistence hiccup should be traceable through this.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger wraps the standard library loggers with level prefixes.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance writing to stdout/stderr.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[SHOP-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[SHOP-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[SHOP-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...any) {
	l.infoLogger.Output(2, fmt.Sprintf(format, args...))
}

// Warn logs warning messages. Rejected mutators land here.
func (l *Logger) Warn(format string, args ...any) {
	l.warnLogger.Output(2, fmt.Sprintf(format, args...))
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	l.errorLogger.Output(2, fmt.Sprintf(format, args...))
}

// Event logs a structured one-liner for a simulation event.
func (l *Logger) Event(eventType string, subject string, details string) {
	l.infoLogger.Output(2, fmt.Sprintf("[EVENT:%s] Subject:%s | %s", eventType, subject, details))
}
