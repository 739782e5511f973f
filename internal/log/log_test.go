package log

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactingHandlerMasksCredentialAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("login attempt",
		slog.String("username", "ana"),
		slog.String("password", "hunter2"),
		slog.String("salt", "cafe01"))

	out := buf.String()
	require.Contains(t, out, "username=ana")
	require.Contains(t, out, "[REDACTED]")
	require.NotContains(t, out, "hunter2")
	require.NotContains(t, out, "cafe01")
}

func TestRedactingHandlerMasksInsideGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("account created",
		slog.Group("account",
			slog.String("username", "ana"),
			slog.String("password_hash", "deadbeef")))

	out := buf.String()
	require.Contains(t, out, "account.username=ana")
	require.NotContains(t, out, "deadbeef")
}

func TestRedactingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))
	logger = logger.With(slog.String("password", "hunter2"))

	logger.Info("hello")
	require.NotContains(t, buf.String(), "hunter2")
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	require.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestNewWithFileCreatesDirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "logs", "clinidesk.log")
	logger, closer, err := New(Options{Level: "info", File: file})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	logger.Info("first line")
	require.NoError(t, closer.Close())
	require.FileExists(t, file)
}
