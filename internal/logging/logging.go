// Package logging builds the structured logger shared by every component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/runnerr0/historydb/internal/config"
)

// Logger wraps a logrus logger together with the rotated file it may own.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// New configures a logger from cfg. Without a file it writes text to
// stderr; with one it writes JSON into a size-rotated log. verbose forces
// debug level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}

	l := &Logger{Logger: logrus.New()}
	l.SetLevel(level)

	if cfg.File == "" {
		l.SetOutput(os.Stderr)
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	l.file = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	}
	l.SetOutput(l.file)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return l, nil
}

// Close flushes and closes the rotated file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
