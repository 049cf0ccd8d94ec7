package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName   = "upnext"
	envPrefix = "UPNEXT_"
)

type Config struct {
	// Prefetch trigger and merge settings
	Prefetch PrefetchConfig `koanf:"prefetch"`

	// Related-track backends
	StreamA BackendConfig `koanf:"streama"`
	StreamB BackendConfig `koanf:"streamb"`

	// Shared HTTP client settings
	HTTP HTTPConfig `koanf:"http"`

	// Related-track cache
	Cache CacheConfig `koanf:"cache"`

	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error" (default: "info")
	LogFile  string `koanf:"log_file"`  // empty means xdg state dir
}

// PrefetchConfig holds the queue prefetch policy as read from the file.
// Pointer fields distinguish an explicit 0 from an unset key.
type PrefetchConfig struct {
	Threshold    *int           `koanf:"threshold"`     // Fetch when remaining tracks <= threshold (default: 2, 0 fetches on the last track)
	MaxAppend    int            `koanf:"max_append"`    // Tracks appended per trigger (1-50, default: 5)
	FetchTimeout *time.Duration `koanf:"fetch_timeout"` // Bound on one resolver call (default: 20s, 0 disables)
}

// PrefetchSettings is the prefetch policy with defaults applied.
type PrefetchSettings struct {
	Threshold    int
	MaxAppend    int
	FetchTimeout time.Duration // 0 means no timeout
}

// BackendConfig holds one related-tracks backend.
type BackendConfig struct {
	BaseURL   string  `koanf:"base_url"`   // e.g., "https://api.example.com"
	RateLimit float64 `koanf:"rate_limit"` // Requests per second (default: 2)
}

// HTTPConfig holds HTTP client settings shared by both backends.
type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout"`    // default: 15s
	UserAgent string        `koanf:"user_agent"` // default: "upnext/1.0"
}

// CacheConfig holds the related-track cache settings.
type CacheConfig struct {
	Enabled  *bool  `koanf:"enabled"`   // default: true
	TTLHours int    `koanf:"ttl_hours"` // default: 24
	Path     string `koanf:"path"`      // SQLite file, empty means xdg data dir
}

// Load reads configuration from the default locations, then from any extra
// paths (last wins), then from UPNEXT_ environment variables. A .env file in
// the working directory is loaded into the environment first.
func Load(extra ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	k := koanf.New(".")

	configPaths := append(getConfigPaths(), extra...)

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize base URLs (remove trailing slash)
	cfg.StreamA.BaseURL = strings.TrimSuffix(cfg.StreamA.BaseURL, "/")
	cfg.StreamB.BaseURL = strings.TrimSuffix(cfg.StreamB.BaseURL, "/")

	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}
	if cfg.LogFile != "" {
		cfg.LogFile = expandPath(cfg.LogFile)
	}

	return cfg, nil
}

// envKey maps UPNEXT_STREAMA__BASE_URL to streama.base_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/upnext/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasStreamAConfig returns true if the StreamA backend is configured.
func (c *Config) HasStreamAConfig() bool {
	return c.StreamA.BaseURL != ""
}

// HasStreamBConfig returns true if the StreamB backend is configured.
func (c *Config) HasStreamBConfig() bool {
	return c.StreamB.BaseURL != ""
}

// GetPrefetchConfig returns the prefetch configuration with defaults applied.
func (c *Config) GetPrefetchConfig() PrefetchSettings {
	cfg := PrefetchSettings{
		Threshold:    2,
		MaxAppend:    c.Prefetch.MaxAppend,
		FetchTimeout: 20 * time.Second,
	}

	if t := c.Prefetch.Threshold; t != nil && *t >= 0 {
		cfg.Threshold = *t
	}
	if cfg.MaxAppend <= 0 || cfg.MaxAppend > 50 {
		cfg.MaxAppend = 5
	}
	if d := c.Prefetch.FetchTimeout; d != nil {
		cfg.FetchTimeout = max(*d, 0)
	}

	return cfg
}

// GetHTTPConfig returns the HTTP configuration with defaults applied.
func (c *Config) GetHTTPConfig() HTTPConfig {
	cfg := c.HTTP

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "upnext/1.0"
	}

	return cfg
}

// GetBackendRate returns the request rate for a backend with the default applied.
func GetBackendRate(b BackendConfig) float64 {
	if b.RateLimit <= 0 {
		return 2
	}
	return b.RateLimit
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.TTLHours <= 0 {
		cfg.TTLHours = 24
	}
	if cfg.Path == "" {
		cfg.Path = filepath.Join(xdg.DataHome, appName, appName+".db")
	}

	return cfg
}

// CacheEnabled returns true unless the cache is explicitly disabled.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// GetLogFile returns the log file path with the default applied.
func (c *Config) GetLogFile() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}
