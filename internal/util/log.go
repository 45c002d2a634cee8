package util

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink describes an optional rolling log file.
type FileSink struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func NewLogger(level string) zerolog.Logger {
	return newLogger(os.Stdout, level)
}

// NewLoggerWithFile writes to stdout and, when sink.Path is set, to a lumberjack-rotated file.
func NewLoggerWithFile(level string, sink FileSink) (zerolog.Logger, io.Closer) {
	if sink.Path == "" {
		return NewLogger(level), nopCloser{}
	}
	roller := &lumberjack.Logger{
		Filename:   sink.Path,
		MaxSize:    sink.MaxSizeMB,
		MaxBackups: sink.MaxBackups,
		MaxAge:     sink.MaxAgeDays,
		Compress:   sink.Compress,
	}
	return newLogger(zerolog.MultiLevelWriter(os.Stdout, roller), level), roller
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
