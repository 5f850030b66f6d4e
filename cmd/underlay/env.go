package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/underlay/internal/config"
	"github.com/1broseidon/underlay/internal/platform"
	"github.com/1broseidon/underlay/internal/relocate"
	"github.com/1broseidon/underlay/internal/shell"
	"github.com/1broseidon/underlay/internal/wallpaper"
)

// env is everything a local command needs to talk to the window system.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend platform.Backend
	locator shell.Locator
	api     *wallpaper.API
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func openEnv(cfgPath string) (*env, error) {
	res, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger, err := newLogger(os.Stderr, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	locator, err := shell.FromConfig(cfg.Locator)
	if err != nil {
		return nil, err
	}

	backend, err := platform.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to window system: %w", err)
	}

	manager := relocate.NewManager(backend, locator, relocate.Options{
		FillContainer: cfg.Relocate.FillContainer,
		Logger:        logger,
	})
	logger.Debug("environment ready", "config", res.File, "locator", locator.Name())

	return &env{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		locator: locator,
		api:     wallpaper.New(manager, logger),
	}, nil
}

// Close releases the window system connection.
func (e *env) Close() {
	if c, ok := e.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			e.logger.Debug("closing backend failed", "error", err)
		}
	}
}
