// Package config loads and validates studypacer configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Platform PlatformConfig    `mapstructure:"platform"`
	Run      RunConfig         `mapstructure:"run"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	// Cookies holds the persisted session as "name=value" strings; see
	// session.ParseCookies.
	Cookies  []string `mapstructure:"cookies"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
}

// PlatformConfig describes the remote learning platform.
type PlatformConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Category       string `mapstructure:"category"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxConnections int    `mapstructure:"max_connections"`
	PageDelayMs    int    `mapstructure:"page_delay_ms"`
}

// RunConfig governs scheduler and worker behavior.
type RunConfig struct {
	UpdateIntervalSeconds int `mapstructure:"update_interval_seconds"`
	MaxConcurrentItems    int `mapstructure:"max_concurrent_items"`
	RetryAttempts         int `mapstructure:"retry_attempts"`
	StartStaggerSeconds   int `mapstructure:"start_stagger_seconds"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STUDYPACER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("studypacer")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.studypacer")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.base_url", "http://www.gaoxiaokaoshi.com")
	v.SetDefault("platform.category", "32")
	v.SetDefault("platform.timeout_seconds", 30)
	v.SetDefault("platform.max_connections", 40)
	v.SetDefault("platform.page_delay_ms", 500)
	v.SetDefault("run.update_interval_seconds", 60)
	v.SetDefault("run.max_concurrent_items", 30)
	v.SetDefault("run.retry_attempts", 3)
	v.SetDefault("run.start_stagger_seconds", 1)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9190")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url must be set")
	}
	if c.Platform.Category == "" {
		return fmt.Errorf("platform.category must be set")
	}
	if c.Platform.TimeoutSeconds <= 0 {
		return fmt.Errorf("platform.timeout_seconds must be > 0")
	}
	if c.Run.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("run.update_interval_seconds must be > 0")
	}
	if c.Run.MaxConcurrentItems <= 0 {
		return fmt.Errorf("run.max_concurrent_items must be > 0")
	}
	if c.Run.RetryAttempts <= 0 {
		return fmt.Errorf("run.retry_attempts must be > 0")
	}
	if c.Platform.MaxConnections < c.Run.MaxConcurrentItems {
		return fmt.Errorf("platform.max_connections must be >= run.max_concurrent_items")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// RequestTimeout converts the platform timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Platform.TimeoutSeconds) * time.Second
}

// UpdateInterval is the fixed pacing wait between successful submissions.
func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.Run.UpdateIntervalSeconds) * time.Second
}

// StartStagger is the per-worker launch delay step.
func (c Config) StartStagger() time.Duration {
	return time.Duration(c.Run.StartStaggerSeconds) * time.Second
}

// PageDelay is the pause inserted between catalog page requests.
func (c Config) PageDelay() time.Duration {
	return time.Duration(c.Platform.PageDelayMs) * time.Millisecond
}
