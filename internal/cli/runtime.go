package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/jeanscarter/clinidesk/internal/config"
	"github.com/jeanscarter/clinidesk/internal/log"
	"github.com/jeanscarter/clinidesk/internal/storage"
)

// runtime bundles everything a command needs: the resolved config, the
// logger, and the migrated store.
type runtime struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	logCloser io.Closer
}

func openRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := log.New(log.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		logCloser: logCloser,
	}, nil
}

func (r *runtime) close() {
	_ = r.store.Close()
	_ = r.logCloser.Close()
}
