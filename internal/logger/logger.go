// Package logger writes user-facing lines and, when debugging, structured
// zerolog records to the command's streams.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	quiet bool
	debug bool
	trace zerolog.Logger
}

func New(out io.Writer, err io.Writer, quiet bool, debug bool) *Logger {
	level := zerolog.Disabled
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
	}

	return &Logger{
		out:   out,
		err:   err,
		quiet: quiet,
		debug: debug,
		trace: zerolog.New(console).Level(level),
	}
}

func (logger *Logger) Log(message string, forceShow bool) {
	if logger.quiet && !forceShow && !logger.debug {
		return
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if _, err := fmt.Fprintln(logger.out, message); err != nil {
		return
	}
}

func (logger *Logger) Debug(message string) {
	if !logger.debug {
		return
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.trace.Debug().Msg(message)
}

// DebugFields emits a debug record with key=value pairs appended after the message.
func (logger *Logger) DebugFields(message string, fields map[string]any) {
	if !logger.debug {
		return
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.trace.Debug().Fields(fields).Msg(message)
}

func (logger *Logger) Error(message string) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if _, err := fmt.Fprintln(logger.err, message); err != nil {
		return
	}
}

func (logger *Logger) Errorf(format string, args ...any) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if _, err := fmt.Fprintf(logger.err, format, args...); err != nil {
		return
	}
}

func (logger *Logger) DebugEnabled() bool {
	return logger.debug
}
