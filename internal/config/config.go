// Package config loads the application's TOML configuration file, applying
// defaults for anything the file leaves unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel     = "info"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5

	defaultDataDirName = ".clinidesk"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	DatabasePath   string `toml:"database_path"`
	AttachmentsDir string `toml:"attachments_dir"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

func DefaultConfig() Config {
	dataDir := defaultDataDir()
	return Config{
		Storage: StorageConfig{
			DatabasePath:   filepath.Join(dataDir, "clinidesk.db"),
			AttachmentsDir: filepath.Join(dataDir, "attachments"),
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			File:      "",
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirName
	}
	return filepath.Join(home, defaultDataDirName)
}

// Load reads path if it exists and overlays it onto the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
	}
	applyRawConfig(&cfg, raw)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Raw structs use pointers so an absent key is distinguishable from a zero
// value.
type rawConfig struct {
	Storage *rawStorage `toml:"storage"`
	Logging *rawLogging `toml:"logging"`
}

type rawStorage struct {
	DatabasePath   *string `toml:"database_path"`
	AttachmentsDir *string `toml:"attachments_dir"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

func applyRawConfig(cfg *Config, raw rawConfig) {
	if raw.Storage != nil {
		setString(raw.Storage.DatabasePath, &cfg.Storage.DatabasePath)
		setString(raw.Storage.AttachmentsDir, &cfg.Storage.AttachmentsDir)
	}
	if raw.Logging != nil {
		setString(raw.Logging.Level, &cfg.Logging.Level)
		setString(raw.Logging.File, &cfg.Logging.File)
		setInt(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setInt(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
	}
}

func setString(src *string, dst *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(src *int, dst *int) {
	if src != nil {
		*dst = *src
	}
}

func validate(cfg Config) error {
	if cfg.Storage.DatabasePath == "" {
		return fmt.Errorf("%w: storage.database_path must not be empty", ErrInvalidConfig)
	}
	if cfg.Storage.AttachmentsDir == "" {
		return fmt.Errorf("%w: storage.attachments_dir must not be empty", ErrInvalidConfig)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be one of debug, info, warn, error", ErrInvalidConfig)
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("%w: logging.max_size_mb must be positive", ErrInvalidConfig)
	}
	if cfg.Logging.MaxFiles <= 0 {
		return fmt.Errorf("%w: logging.max_files must be positive", ErrInvalidConfig)
	}
	return nil
}
