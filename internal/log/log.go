// Package log wires slog with credential redaction and optional size-based
// file rotation.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// New builds the application logger. When File is set, output goes to a
// rotating file; otherwise to stderr. Every handler is wrapped by the
// redacting handler so credential-bearing attributes never reach disk.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		writer, err := NewRotatingWriter(RotationConfig{
			File:      opts.File,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
		})
		if err != nil {
			return nil, nil, err
		}
		out = writer
		closer = writer
	}

	handler := NewRedactingHandler(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return slog.New(handler), closer, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch raw {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", raw)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
