package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, validate(cfg))
	require.NotEmpty(t, cfg.Storage.DatabasePath)
	require.NotEmpty(t, cfg.Storage.AttachmentsDir)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clinidesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
database_path = "/data/clinic.db"

[logging]
level = "debug"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/clinic.db", cfg.Storage.DatabasePath)
	require.Equal(t, "debug", cfg.Logging.Level)

	// Keys the file leaves out keep their defaults.
	require.Equal(t, DefaultConfig().Storage.AttachmentsDir, cfg.Storage.AttachmentsDir)
	require.Equal(t, DefaultConfig().Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clinidesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
level = "loud"
`), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clinidesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(`level = = "info"`), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadEmptyDatabasePathRejected(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clinidesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
database_path = ""
`), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
