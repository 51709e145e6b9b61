package registry

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config lists where viewer capability manifests are published and how the
// client should fetch them.
type Config struct {
	// Manifests holds manifest locations: http(s) URLs or local file paths.
	Manifests []string `mapstructure:"manifests"`

	// FetchTimeout bounds a single manifest fetch, retries included.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// CacheTTL controls how long a fetched manifest is served from cache.
	// Zero disables caching.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DefaultConfig returns the settings used when no config file is available.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 30 * time.Second,
		CacheTTL:     5 * time.Minute,
	}
}

// LoadConfig reads a registry configuration file (YAML).
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("fetch_timeout", 30*time.Second)
	v.SetDefault("cache_ttl", 5*time.Minute)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
