package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Site.PageSize != 20 {
		t.Errorf("expected default page_size 20, got %d", cfg.Site.PageSize)
	}
	if cfg.Offline.CacheName != "transitdir-v1" {
		t.Errorf("expected default cache_name %q, got %q", "transitdir-v1", cfg.Offline.CacheName)
	}
	if cfg.Offline.Storage != StorageSQLite {
		t.Errorf("expected default storage %q, got %q", StorageSQLite, cfg.Offline.Storage)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestDefaultManifest(t *testing.T) {
	manifest := DefaultManifest()
	want := map[string]bool{
		"/":                     false,
		"/manifest.webmanifest": false,
		"/styles/globals.css":   false,
		"/images/route.svg":     false,
		"/images/peoplebus.svg": false,
	}
	for _, asset := range manifest {
		if _, ok := want[asset]; ok {
			want[asset] = true
		}
	}
	for asset, found := range want {
		if !found {
			t.Errorf("default manifest missing %s: %v", asset, manifest)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.transitdir.yml")

	original := DefaultConfig()
	original.Site.City = "Lahore"
	original.Site.PageSize = 12
	original.Site.Catalog = "routes/**/*.yaml"
	original.Offline.CacheName = "lahore-v3"
	original.Offline.Manifest = []string{"/", "/styles/globals.css"}
	original.Server.AllowAllOrigins = true

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Site.City != original.Site.City {
		t.Errorf("city: got %q, want %q", loaded.Site.City, original.Site.City)
	}
	if loaded.Site.PageSize != original.Site.PageSize {
		t.Errorf("page_size: got %d, want %d", loaded.Site.PageSize, original.Site.PageSize)
	}
	if loaded.Site.Catalog != original.Site.Catalog {
		t.Errorf("catalog: got %q, want %q", loaded.Site.Catalog, original.Site.Catalog)
	}
	if loaded.Offline.CacheName != original.Offline.CacheName {
		t.Errorf("cache_name: got %q, want %q", loaded.Offline.CacheName, original.Offline.CacheName)
	}
	if !loaded.Server.AllowAllOrigins {
		t.Error("allow_all_origins: got false, want true")
	}
	if len(loaded.Offline.Manifest) != len(original.Offline.Manifest) {
		t.Fatalf("manifest length: got %d, want %d", len(loaded.Offline.Manifest), len(original.Offline.Manifest))
	}
	for i, v := range loaded.Offline.Manifest {
		if v != original.Offline.Manifest[i] {
			t.Errorf("manifest[%d]: got %q, want %q", i, v, original.Offline.Manifest[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Site.Title != DefaultConfig().Site.Title {
		t.Errorf("expected default title, got %q", cfg.Site.Title)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port: got %d, want 9000", cfg.Server.Port)
	}
	if cfg.Offline.CacheName != "transitdir-v1" {
		t.Errorf("unset cache_name should keep its default, got %q", cfg.Offline.CacheName)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("TRANSITDIR_SERVER__PORT", "9090")
	t.Setenv("TRANSITDIR_OFFLINE__CACHE_NAME", "transitdir-v2")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("env override failed: got port %d, want 9090", loaded.Server.Port)
	}
	if loaded.Offline.CacheName != "transitdir-v2" {
		t.Errorf("env override failed: got cache_name %q", loaded.Offline.CacheName)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TRANSITDIR_SERVER__PORT", "server.port"},
		{"TRANSITDIR_OFFLINE__CACHE_NAME", "offline.cache_name"},
		{"TRANSITDIR_SITE__PAGE_SIZE", "site.page_size"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory storage without data dir", func(c *Config) {
			c.Offline.Storage = StorageMemory
			c.Offline.DataDir = ""
		}, false},
		{"empty title", func(c *Config) { c.Site.Title = "" }, true},
		{"negative page size", func(c *Config) { c.Site.PageSize = -1 }, true},
		{"bad locale", func(c *Config) { c.Site.Locale = "not a locale!" }, true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"proxy port too large", func(c *Config) { c.Proxy.Port = 70000 }, true},
		{"empty cache name", func(c *Config) { c.Offline.CacheName = "" }, true},
		{"relative origin", func(c *Config) { c.Offline.Origin = "/site" }, true},
		{"unknown storage", func(c *Config) { c.Offline.Storage = "redis" }, true},
		{"sqlite without data dir", func(c *Config) { c.Offline.DataDir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOriginURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Origin = "https://transit.example.com/base/"
	u, err := cfg.OriginURL()
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "transit.example.com" {
		t.Errorf("host = %q", u.Host)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	for _, in := range []string{"1", " 20 "} {
		if err := validatePositiveInt(in); err != nil {
			t.Errorf("validatePositiveInt(%q) = %v", in, err)
		}
	}
	for _, in := range []string{"0", "-3", "ten", ""} {
		if err := validatePositiveInt(in); err == nil {
			t.Errorf("validatePositiveInt(%q) should fail", in)
		}
	}
}
