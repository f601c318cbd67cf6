// Package logger wraps github.com/baditaflorin/l behind a small interface.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
)

// Logger is the structured logger used across tidysheet.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Close() error
}

// Options selects where and how log lines are written.
type Options struct {
	// File is a path to append to. Empty means Fallback.
	File string
	// Fallback receives log lines when File is empty. Nil discards them.
	Fallback io.Writer
	JSON     bool
}

type stdLogger struct {
	logger l.Logger
	file   *os.File
}

// New builds a Logger from opts.
func New(opts Options) (Logger, error) {
	var output io.Writer = io.Discard
	var file *os.File

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		file = f
	} else if opts.Fallback != nil {
		output = opts.Fallback
	}

	lg, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output:     output,
		JsonFormat: opts.JSON,
		AsyncWrite: false,
		AddSource:  false,
	})
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &stdLogger{logger: lg, file: file}, nil
}

func (s *stdLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logger.Debug(msg, keysAndValues...)
}

func (s *stdLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logger.Info(msg, keysAndValues...)
}

func (s *stdLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logger.Warn(msg, keysAndValues...)
}

func (s *stdLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logger.Error(msg, keysAndValues...)
}

func (s *stdLogger) Close() error {
	err := s.logger.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopLogger struct{}

// Nop returns a Logger that drops everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Close() error                 { return nil }
