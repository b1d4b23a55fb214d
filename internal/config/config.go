package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: TRANSITDIR_SERVER__PORT sets server.port.
const EnvPrefix = "TRANSITDIR_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TRANSITDIR_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps TRANSITDIR_OFFLINE__CACHE_NAME to offline.cache_name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validStorage = map[StorageType]bool{
	StorageSQLite: true,
	StorageMemory: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("site.title is required")
	}
	if c.Site.PageSize < 0 {
		return fmt.Errorf("site.page_size must be non-negative")
	}
	if _, err := language.Parse(c.Site.Locale); err != nil {
		return fmt.Errorf("invalid site.locale %q: %w", c.Site.Locale, err)
	}

	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := validPort("proxy.port", c.Proxy.Port); err != nil {
		return err
	}

	if c.Offline.CacheName == "" {
		return fmt.Errorf("offline.cache_name is required")
	}
	if _, err := c.OriginURL(); err != nil {
		return err
	}
	if !validStorage[c.Offline.Storage] {
		return fmt.Errorf("invalid offline.storage %q: must be one of sqlite, memory", c.Offline.Storage)
	}
	if c.Offline.Storage == StorageSQLite && c.Offline.DataDir == "" {
		return fmt.Errorf("offline.data_dir is required for sqlite storage")
	}
	for _, asset := range c.Offline.Manifest {
		if _, err := url.Parse(asset); err != nil {
			return fmt.Errorf("invalid offline.manifest entry %q: %w", asset, err)
		}
	}

	return nil
}

// OriginURL parses offline.origin. It must be an absolute http(s) URL.
func (c *Config) OriginURL() (*url.URL, error) {
	u, err := url.Parse(c.Offline.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid offline.origin %q: %w", c.Offline.Origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid offline.origin %q: must be an absolute http(s) URL", c.Offline.Origin)
	}
	return u, nil
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}
