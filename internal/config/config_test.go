package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Run.MaxConcurrentItems != 30 {
		t.Fatalf("expected default max_concurrent_items 30, got %d", cfg.Run.MaxConcurrentItems)
	}
	if cfg.Run.UpdateIntervalSeconds != 60 {
		t.Fatalf("expected default update interval 60, got %d", cfg.Run.UpdateIntervalSeconds)
	}
	if cfg.Platform.Category != "32" {
		t.Fatalf("expected default category 32, got %q", cfg.Platform.Category)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studypacer.json")
	body := `{
  "platform": {"base_url": "http://example.test", "category": "7"},
  "run": {"max_concurrent_items": 5, "retry_attempts": 2},
  "cookies": ["ASP.NET_SessionId=abc123"]
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if cfg.Platform.BaseURL != "http://example.test" {
		t.Fatalf("base_url = %q", cfg.Platform.BaseURL)
	}
	if cfg.Run.MaxConcurrentItems != 5 {
		t.Fatalf("max_concurrent_items = %d", cfg.Run.MaxConcurrentItems)
	}
	if len(cfg.Cookies) != 1 || cfg.Cookies[0] != "ASP.NET_SessionId=abc123" {
		t.Fatalf("cookies = %v", cfg.Cookies)
	}
	// File values merge over defaults, not replace them.
	if cfg.Run.UpdateIntervalSeconds != 60 {
		t.Fatalf("update interval = %d", cfg.Run.UpdateIntervalSeconds)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Platform.BaseURL = "" }},
		{"zero interval", func(c *Config) { c.Run.UpdateIntervalSeconds = 0 }},
		{"zero concurrency", func(c *Config) { c.Run.MaxConcurrentItems = 0 }},
		{"zero retries", func(c *Config) { c.Run.RetryAttempts = 0 }},
		{"pool below worker cap", func(c *Config) { c.Platform.MaxConnections = 1 }},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{
				Platform: PlatformConfig{
					BaseURL:        "http://example.test",
					Category:       "32",
					TimeoutSeconds: 30,
					MaxConnections: 40,
				},
				Run: RunConfig{
					UpdateIntervalSeconds: 60,
					MaxConcurrentItems:    30,
					RetryAttempts:         3,
				},
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
