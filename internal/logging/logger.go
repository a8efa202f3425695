// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

// Field names for structured logging.
const (
	FieldError   = "error"
	FieldURL     = "url"
	FieldPath    = "path"
	FieldChannel = "channel"
	FieldGame    = "game"
	FieldStatus  = "status"
	FieldTokens  = "tokens"
	FieldStreams = "streams"
	FieldBytes   = "bytes"
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
	})
	return defaultLogger
}

// New creates a logger writing to stderr at the specified level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger { return NewWriter(os.Stderr, level) }

// NewWriter creates a logger writing to w at the specified level.
func NewWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	setLoggerLevel(logger, level)
	return logger
}

func setLoggerLevel(logger *log.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// Default returns the package-level default logger.
func Default() *log.Logger { return getDefaultLogger() }

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLogger = logger
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) { setLoggerLevel(getDefaultLogger(), level) }

type contextKey struct{}

// FromContext retrieves a Logger from ctx, or returns the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithLogger returns a context with the given logger attached.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}
