// Package logging builds the process logger shared by the pipeline components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls where log lines are written.
type Options struct {
	// Dir receives the dated log file. An empty Dir disables file output.
	Dir string
	// Level is the console level; the file always records debug and above.
	Level string
	// Console defaults to stderr when nil.
	Console io.Writer
	// Now is used to date the log file name.
	Now func() time.Time
}

// New returns a logger writing human readable lines to the console and
// JSON lines to Dir/pipeline_YYYYMMDD.log. The returned func closes the file.
func New(opts Options) (zerolog.Logger, func() error, error) {
	consoleLevel, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{
		levelWriter{
			Writer: zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly},
			min:    consoleLevel,
		},
	}

	closer := func() error { return nil }

	if opts.Dir != "" {
		now := opts.Now
		if now == nil {
			now = time.Now
		}

		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		name := filepath.Join(opts.Dir, FileName(now()))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}

		writers = append(writers, levelWriter{Writer: f, min: zerolog.DebugLevel})
		closer = f.Close
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel(consoleLevel, zerolog.DebugLevel)).
		With().
		Timestamp().
		Str("service", "weather-pipeline").
		Logger()

	return log, closer, nil
}

// FileName is the dated log file name for t.
func FileName(t time.Time) string {
	return "pipeline_" + t.Format("20060102") + ".log"
}

// ParseLevel maps a config level to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func minLevel(a, b zerolog.Level) zerolog.Level {
	if a < b {
		return a
	}
	return b
}

// levelWriter drops events below min for a single output.
type levelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < w.min {
		return len(p), nil
	}
	return w.Write(p)
}
