package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/config"
	"github.com/ziadkadry99/transitdir/internal/db"
	"github.com/ziadkadry99/transitdir/internal/offline"
	"github.com/ziadkadry99/transitdir/internal/progress"
	"github.com/ziadkadry99/transitdir/internal/site"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `transitdir init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Site.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading routes: %w", err)
	}
	if unknown := cat.Unknown(); len(unknown) > 0 && verbose {
		for _, r := range unknown {
			fmt.Fprintf(os.Stderr, "Warning: route %s has unknown category %q, showing the fallback icon\n", r.Number, r.Category)
		}
	}
	return cat, nil
}

func siteConfig(cfg *config.Config) site.Config {
	return site.Config{
		Title:     cfg.Site.Title,
		City:      cfg.Site.City,
		Locale:    cfg.Site.Locale,
		Currency:  cfg.Site.Currency,
		PageSize:  cfg.Site.PageSize,
		CacheName: cfg.Offline.CacheName,
		Manifest:  cfg.Offline.Manifest,
	}
}

// openStorage returns the configured offline storage and a func that
// releases it.
func openStorage(cfg *config.Config) (offline.Storage, func() error, error) {
	switch cfg.Offline.Storage {
	case config.StorageMemory:
		return offline.NewMemoryStorage(), func() error { return nil }, nil
	default:
		database, err := db.Open(cfg.CachePath())
		if err != nil {
			return nil, nil, fmt.Errorf("opening offline cache: %w", err)
		}
		return offline.NewSQLStorage(database), database.Close, nil
	}
}

// offlineLogger writes worker lifecycle messages to stderr in verbose mode.
func offlineLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "offline: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// newWorker builds the cache worker described by cfg. reporter may be nil.
func newWorker(cfg *config.Config, storage offline.Storage, network http.RoundTripper, reporter progress.Reporter) (*offline.Worker, error) {
	origin, err := cfg.OriginURL()
	if err != nil {
		return nil, err
	}
	return offline.NewWorker(offline.Config{
		Version:  cfg.Offline.CacheName,
		Origin:   origin,
		Manifest: cfg.Offline.Manifest,
		Network:  network,
		Storage:  storage,
		Logger:   offlineLogger(),
		Progress: reporter,
	})
}
