package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runnerr0/historydb/internal/config"
	"github.com/runnerr0/historydb/internal/logging"
	"github.com/runnerr0/historydb/internal/storage"
)

// loadConfig reads the file named by --config, or the default location when
// none is given, and applies the global flag overrides. override, if set,
// applies command flags before the result is validated.
func loadConfig(g *GlobalFlags, override func(*config.Config)) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g != nil && g.Config != "" {
		cfg, err = config.Load(g.Config)
	} else {
		cfg, err = config.LoadOrDefault()
	}
	if err != nil {
		return nil, err
	}

	if g != nil && g.Driver != "" {
		cfg.Store.Driver = g.Driver
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prepare loads the config and builds the logger every command runs with.
func prepare(g *GlobalFlags, override func(*config.Config)) (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig(g, override)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Logging, g != nil && g.Verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openStore connects to the backend named by driver. For sqlite, url is a
// database file path whose directory is created if needed.
func openStore(ctx context.Context, driver, url string) (storage.Store, error) {
	switch driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(url), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		return storage.OpenSQLite(url)
	case config.DriverPostgres:
		return storage.OpenPostgres(ctx, url)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// connect returns the injected store, or opens one from cfg. The returned
// func releases whatever connect opened.
func connect(ctx context.Context, injected storage.Store, cfg *config.Config) (storage.Store, func(), error) {
	if injected != nil {
		return injected, func() {}, nil
	}
	url, err := cfg.StoreURL()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg.Store.Driver, url)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
