package config

import (
	"path/filepath"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/query"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".transitdir.yml"

// DefaultManifest lists the shell assets precached on install: the page,
// the web manifest, the stylesheet and every category icon.
func DefaultManifest() []string {
	manifest := []string{"/", "/manifest.webmanifest", "/styles/globals.css"}
	return append(manifest, catalog.Icons()...)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:    "Karachi Transit Routes",
			City:     "Karachi",
			Locale:   "en",
			Currency: "Rs",
			PageSize: query.DefaultPageSize,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Offline: OfflineConfig{
			CacheName: "transitdir-v1",
			Origin:    "http://localhost:8080",
			Manifest:  DefaultManifest(),
			Storage:   StorageSQLite,
			DataDir:   filepath.Join(".transitdir", "offline"),
		},
		Proxy: ProxyConfig{
			Port: 8081,
		},
	}
}

// CachePath returns the SQLite file backing the offline cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.Offline.DataDir, "cache.db")
}
