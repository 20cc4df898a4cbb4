// Package logging builds the process logger: logrus to stdout, optionally
// teed into a size-rotated file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file created under Config.Path.
const FileName = "subsubs.log"

// Config holds logger configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`      // "text" or "json"
	Path       string `mapstructure:"path"`        // directory for log files; empty disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // default 10
	MaxBackups int    `mapstructure:"max_backups"` // default 5
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`

	// Output replaces stdout as the console writer.
	Output io.Writer `mapstructure:"-"`
}

// Logger is a logrus logger that owns its rotating file, if any.
type Logger struct {
	*log.Logger
	rotator *lumberjack.Logger
}

// New creates a logger from cfg. A log directory that cannot be created is
// reported on the console and file output is skipped.
func New(cfg Config) *Logger {
	console := cfg.Output
	if console == nil {
		console = os.Stdout
	}

	logger := log.New()
	logger.SetLevel(ParseLevel(cfg.Level))
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	var output io.Writer = console
	var rotator *lumberjack.Logger

	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			logger.SetOutput(console)
			logger.WithError(err).WithField("path", cfg.Path).Warn("Log directory unavailable, logging to console only")
		} else {
			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Path, FileName),
				MaxSize:    positiveOr(cfg.MaxSizeMB, 10),
				MaxBackups: positiveOr(cfg.MaxBackups, 5),
				MaxAge:     positiveOr(cfg.MaxAgeDays, 30),
				Compress:   cfg.Compress,
				LocalTime:  true,
			}
			output = io.MultiWriter(console, rotator)
		}
	}

	logger.SetOutput(output)
	return &Logger{Logger: logger, rotator: rotator}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// WithComponent returns an entry tagged with the component name.
func (l *Logger) WithComponent(component string) *log.Entry {
	return l.WithField("component", component)
}

// ParseLevel converts a level name to a logrus level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
