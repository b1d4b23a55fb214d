package config

// StorageType selects where the offline cache keeps its entries.
type StorageType string

const (
	StorageSQLite StorageType = "sqlite"
	StorageMemory StorageType = "memory"
)

// Config is the top-level transitdir configuration, corresponding to .transitdir.yml.
type Config struct {
	Site    SiteConfig    `yaml:"site" koanf:"site"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Offline OfflineConfig `yaml:"offline" koanf:"offline"`
	Proxy   ProxyConfig   `yaml:"proxy" koanf:"proxy"`
}

// SiteConfig controls what the directory shows.
type SiteConfig struct {
	Title    string `yaml:"title" koanf:"title"`
	City     string `yaml:"city" koanf:"city"`
	Locale   string `yaml:"locale" koanf:"locale"`
	Currency string `yaml:"currency" koanf:"currency"`
	PageSize int    `yaml:"page_size" koanf:"page_size"`
	// Catalog is a route file or doublestar pattern. Empty uses the built-in routes.
	Catalog string `yaml:"catalog" koanf:"catalog"`
}

// ServerConfig holds settings for the site server.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// OfflineConfig configures the offline cache worker.
type OfflineConfig struct {
	CacheName string      `yaml:"cache_name" koanf:"cache_name"`
	Origin    string      `yaml:"origin" koanf:"origin"`
	Manifest  []string    `yaml:"manifest" koanf:"manifest"`
	Storage   StorageType `yaml:"storage" koanf:"storage"`
	DataDir   string      `yaml:"data_dir" koanf:"data_dir"`
}

// ProxyConfig holds settings for the offline proxy.
type ProxyConfig struct {
	Port int `yaml:"port" koanf:"port"`
}
