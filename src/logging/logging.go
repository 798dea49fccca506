// Package logging provides the zerolog-based logger shared by all tklbam
// packages. Initialize once from main via Init; packages log through the
// package-level helpers.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger initialization.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Default info.
	Level string

	// Format is "console" or "json". Default console; tklbam is an
	// interactive CLI first.
	Format string

	// Output receives log lines. Default os.Stderr.
	Output io.Writer
}

var (
	mu  sync.RWMutex
	log = newLogger(Config{})
)

// Init reconfigures the global logger. Safe to call more than once.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(cfg)
}

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug() *zerolog.Event { l := Logger(); return l.Debug() }
func Info() *zerolog.Event  { l := Logger(); return l.Info() }
func Warn() *zerolog.Event  { l := Logger(); return l.Warn() }
func Error() *zerolog.Event { l := Logger(); return l.Error() }
