//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp switches into a fresh temp directory for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return tmpDir
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/cache/upnext.db",
			expected: filepath.Join(home, "cache", "upnext.db"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/lib/upnext.db",
			expected: "/var/lib/upnext.db",
		},
		{
			name:     "relative path unchanged",
			input:    "data/upnext.db",
			expected: "data/upnext.db",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	if filepath.Base(filepath.Dir(paths[0])) != appName {
		t.Errorf("first config path = %q, want it under an %q directory", paths[0], appName)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"UPNEXT_STREAMA__BASE_URL", "streama.base_url"},
		{"UPNEXT_PREFETCH__MAX_APPEND", "prefetch.max_append"},
		{"UPNEXT_LOG_LEVEL", "log_level"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasBackendConfig(t *testing.T) {
	cfg := Config{StreamA: BackendConfig{BaseURL: "http://a"}}

	if !cfg.HasStreamAConfig() {
		t.Error("HasStreamAConfig() = false, want true")
	}
	if cfg.HasStreamBConfig() {
		t.Error("HasStreamBConfig() = true, want false")
	}
}

func TestGetPrefetchConfig_Defaults(t *testing.T) {
	cfg := Config{}

	p := cfg.GetPrefetchConfig()

	if p.Threshold != 2 {
		t.Errorf("Threshold = %d, want 2", p.Threshold)
	}
	if p.MaxAppend != 5 {
		t.Errorf("MaxAppend = %d, want 5", p.MaxAppend)
	}
	if p.FetchTimeout != 20*time.Second {
		t.Errorf("FetchTimeout = %v, want 20s", p.FetchTimeout)
	}
}

func intPtr(v int) *int { return &v }

func durationPtr(d time.Duration) *time.Duration { return &d }

func TestGetPrefetchConfig_CustomAndInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   PrefetchConfig
		want PrefetchSettings
	}{
		{
			name: "custom values kept",
			in:   PrefetchConfig{Threshold: intPtr(4), MaxAppend: 10, FetchTimeout: durationPtr(5 * time.Second)},
			want: PrefetchSettings{Threshold: 4, MaxAppend: 10, FetchTimeout: 5 * time.Second},
		},
		{
			name: "max append over limit",
			in:   PrefetchConfig{MaxAppend: 500},
			want: PrefetchSettings{Threshold: 2, MaxAppend: 5, FetchTimeout: 20 * time.Second},
		},
		{
			name: "zero threshold kept",
			in:   PrefetchConfig{Threshold: intPtr(0)},
			want: PrefetchSettings{Threshold: 0, MaxAppend: 5, FetchTimeout: 20 * time.Second},
		},
		{
			name: "negative threshold uses default",
			in:   PrefetchConfig{Threshold: intPtr(-1)},
			want: PrefetchSettings{Threshold: 2, MaxAppend: 5, FetchTimeout: 20 * time.Second},
		},
		{
			name: "zero timeout disables",
			in:   PrefetchConfig{FetchTimeout: durationPtr(0)},
			want: PrefetchSettings{Threshold: 2, MaxAppend: 5, FetchTimeout: 0},
		},
		{
			name: "negative timeout disables",
			in:   PrefetchConfig{FetchTimeout: durationPtr(-time.Second)},
			want: PrefetchSettings{Threshold: 2, MaxAppend: 5, FetchTimeout: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&Config{Prefetch: tt.in}).GetPrefetchConfig()
			if got != tt.want {
				t.Errorf("GetPrefetchConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetHTTPConfig_Defaults(t *testing.T) {
	h := (&Config{}).GetHTTPConfig()

	if h.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", h.Timeout)
	}
	if h.UserAgent == "" {
		t.Error("UserAgent is empty")
	}
}

func TestGetBackendRate(t *testing.T) {
	if got := GetBackendRate(BackendConfig{}); got != 2 {
		t.Errorf("GetBackendRate(default) = %v, want 2", got)
	}
	if got := GetBackendRate(BackendConfig{RateLimit: 0.5}); got != 0.5 {
		t.Errorf("GetBackendRate(0.5) = %v, want 0.5", got)
	}
}

func TestGetCacheConfig(t *testing.T) {
	c := (&Config{}).GetCacheConfig()

	if c.Enabled == nil || !*c.Enabled {
		t.Error("cache should be enabled by default")
	}
	if c.TTLHours != 24 {
		t.Errorf("TTLHours = %d, want 24", c.TTLHours)
	}
	if c.Path == "" {
		t.Error("Path should default to the data dir")
	}

	disabled := false
	cfg := Config{Cache: CacheConfig{Enabled: &disabled}}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true, want false")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	chdirTemp(t)

	configContent := `
log_level = "debug"

[prefetch]
threshold = 3
max_append = 8
fetch_timeout = "7s"

[streama]
base_url = "https://a.example.com/"
rate_limit = 4.5

[streamb]
base_url = "https://b.example.com"

[cache]
enabled = false
ttl_hours = 48
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	p := cfg.GetPrefetchConfig()
	if p.Threshold != 3 || p.MaxAppend != 8 {
		t.Errorf("Prefetch = %+v, want threshold 3, max_append 8", p)
	}
	if p.FetchTimeout != 7*time.Second {
		t.Errorf("FetchTimeout = %v, want 7s", p.FetchTimeout)
	}
	// Trailing slash is removed
	if cfg.StreamA.BaseURL != "https://a.example.com" {
		t.Errorf("StreamA.BaseURL = %q, want %q", cfg.StreamA.BaseURL, "https://a.example.com")
	}
	if cfg.StreamA.RateLimit != 4.5 {
		t.Errorf("StreamA.RateLimit = %v, want 4.5", cfg.StreamA.RateLimit)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true, want false")
	}
	if cfg.Cache.TTLHours != 48 {
		t.Errorf("Cache.TTLHours = %d, want 48", cfg.Cache.TTLHours)
	}
}

func TestLoad_ExtraPathWins(t *testing.T) {
	dir := chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("[prefetch]\nthreshold = 3\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	extra := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(extra, []byte("[prefetch]\nthreshold = 6\n"), 0o600); err != nil {
		t.Fatalf("could not write override file: %v", err)
	}

	cfg, err := Load(extra)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetPrefetchConfig().Threshold; got != 6 {
		t.Errorf("Threshold = %d, want 6", got)
	}
}

func TestLoad_ZeroThresholdAndTimeout(t *testing.T) {
	chdirTemp(t)

	content := "[prefetch]\nthreshold = 0\nfetch_timeout = \"0s\"\n"
	if err := os.WriteFile("config.toml", []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p := cfg.GetPrefetchConfig()
	if p.Threshold != 0 {
		t.Errorf("Threshold = %d, want 0", p.Threshold)
	}
	if p.FetchTimeout != 0 {
		t.Errorf("FetchTimeout = %v, want 0 (disabled)", p.FetchTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("[streamb]\nbase_url = \"https://file.example.com\"\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	t.Setenv("UPNEXT_STREAMB__BASE_URL", "https://env.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StreamB.BaseURL != "https://env.example.com" {
		t.Errorf("StreamB.BaseURL = %q, want env value", cfg.StreamB.BaseURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(".env", []byte("UPNEXT_STREAMA__BASE_URL=https://dotenv.example.com\n"), 0o600); err != nil {
		t.Fatalf("could not write .env file: %v", err)
	}
	// Registers cleanup of the variable godotenv will set.
	t.Setenv("UPNEXT_STREAMA__BASE_URL", "")
	os.Unsetenv("UPNEXT_STREAMA__BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StreamA.BaseURL != "https://dotenv.example.com" {
		t.Errorf("StreamA.BaseURL = %q, want .env value", cfg.StreamA.BaseURL)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_CachePathExpansion(t *testing.T) {
	chdirTemp(t)
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	if err := os.WriteFile("config.toml", []byte("[cache]\npath = \"~/upnext/cache.db\"\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(home, "upnext", "cache.db")
	if cfg.Cache.Path != want {
		t.Errorf("Cache.Path = %q, want %q", cfg.Cache.Path, want)
	}
}
