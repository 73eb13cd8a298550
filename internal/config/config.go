// Package config handles loading and validating configuration from a
// YAML file and environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the dashboard client.
type Config struct {
	// Server
	ServerURL string `yaml:"server_url"`

	// Sync cadences
	StatusPollInterval  time.Duration `yaml:"-"`
	BalancePollInterval time.Duration `yaml:"-"`
	KeepaliveInterval   time.Duration `yaml:"-"`

	// Reconnect backoff
	ReconnectBase time.Duration `yaml:"-"`
	ReconnectCap  time.Duration `yaml:"-"`

	// Display
	EnableTUI     bool          `yaml:"enable_tui"`
	UIRefreshRate time.Duration `yaml:"-"`
	Category      string        `yaml:"category"`

	// Cache
	CachePath string `yaml:"cache_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// fileConfig mirrors the YAML file, with durations in seconds so the
// file stays plain numbers.
type fileConfig struct {
	ServerURL           string `yaml:"server_url"`
	StatusPollSeconds   int    `yaml:"status_poll_seconds"`
	BalancePollSeconds  int    `yaml:"balance_poll_seconds"`
	KeepaliveSeconds    int    `yaml:"keepalive_seconds"`
	ReconnectBaseMillis int    `yaml:"reconnect_base_ms"`
	ReconnectCapMillis  int    `yaml:"reconnect_cap_ms"`
	EnableTUI           *bool  `yaml:"enable_tui"`
	UIRefreshMillis     int    `yaml:"ui_refresh_ms"`
	Category            string `yaml:"category"`
	CachePath           string `yaml:"cache_path"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file"`
}

// Load builds the configuration.
// Priority order: Environment variables > YAML file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		ServerURL:           "http://localhost:8000",
		StatusPollInterval:  30 * time.Second,
		BalancePollInterval: 60 * time.Second,
		KeepaliveInterval:   30 * time.Second,
		ReconnectBase:       1 * time.Second,
		ReconnectCap:        30 * time.Second,
		EnableTUI:           true,
		UIRefreshRate:       500 * time.Millisecond,
		Category:            "all",
		CachePath:           "./data/dashboard.db",
		LogLevel:            "INFO",
		LogFile:             "./data/dashboard.log",
	}

	path := getEnv("DASHBOARD_CONFIG", "dashboard.yml")
	if err := cfg.applyFile(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyFile overlays values from a YAML file, if it exists.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if fc.ServerURL != "" {
		c.ServerURL = fc.ServerURL
	}
	if fc.StatusPollSeconds > 0 {
		c.StatusPollInterval = time.Duration(fc.StatusPollSeconds) * time.Second
	}
	if fc.BalancePollSeconds > 0 {
		c.BalancePollInterval = time.Duration(fc.BalancePollSeconds) * time.Second
	}
	if fc.KeepaliveSeconds > 0 {
		c.KeepaliveInterval = time.Duration(fc.KeepaliveSeconds) * time.Second
	}
	if fc.ReconnectBaseMillis > 0 {
		c.ReconnectBase = time.Duration(fc.ReconnectBaseMillis) * time.Millisecond
	}
	if fc.ReconnectCapMillis > 0 {
		c.ReconnectCap = time.Duration(fc.ReconnectCapMillis) * time.Millisecond
	}
	if fc.EnableTUI != nil {
		c.EnableTUI = *fc.EnableTUI
	}
	if fc.UIRefreshMillis > 0 {
		c.UIRefreshRate = time.Duration(fc.UIRefreshMillis) * time.Millisecond
	}
	if fc.Category != "" {
		c.Category = fc.Category
	}
	if fc.CachePath != "" {
		c.CachePath = fc.CachePath
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}

	return nil
}

// applyEnv overlays values from environment variables.
func (c *Config) applyEnv() {
	c.ServerURL = getEnv("DASHBOARD_SERVER_URL", c.ServerURL)
	c.StatusPollInterval = getEnvSeconds("STATUS_POLL_SECONDS", c.StatusPollInterval)
	c.BalancePollInterval = getEnvSeconds("BALANCE_POLL_SECONDS", c.BalancePollInterval)
	c.KeepaliveInterval = getEnvSeconds("KEEPALIVE_SECONDS", c.KeepaliveInterval)
	c.ReconnectBase = getEnvMillis("RECONNECT_BASE_MS", c.ReconnectBase)
	c.ReconnectCap = getEnvMillis("RECONNECT_CAP_MS", c.ReconnectCap)
	c.EnableTUI = getEnvBool("ENABLE_TUI", c.EnableTUI)
	c.UIRefreshRate = getEnvMillis("UI_REFRESH_MS", c.UIRefreshRate)
	c.Category = getEnv("MARKET_CATEGORY", c.Category)
	c.CachePath = getEnv("CACHE_PATH", c.CachePath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("DASHBOARD_SERVER_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("DASHBOARD_SERVER_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("DASHBOARD_SERVER_URL has no host")
	}

	if c.StatusPollInterval <= 0 {
		return fmt.Errorf("STATUS_POLL_SECONDS must be positive")
	}
	if c.BalancePollInterval <= 0 {
		return fmt.Errorf("BALANCE_POLL_SECONDS must be positive")
	}
	if c.KeepaliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_SECONDS must be positive")
	}
	if c.ReconnectBase <= 0 {
		return fmt.Errorf("RECONNECT_BASE_MS must be positive")
	}
	if c.ReconnectCap < c.ReconnectBase {
		return fmt.Errorf("RECONNECT_CAP_MS must be at least RECONNECT_BASE_MS")
	}

	return nil
}

// SocketURL derives the push-channel endpoint from the server origin.
// https maps to wss, http to ws.
func (c *Config) SocketURL() string {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/ws", scheme, u.Host)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSeconds retrieves an environment variable as whole seconds.
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return time.Duration(intVal) * time.Second
		}
	}
	return defaultValue
}

// getEnvMillis retrieves an environment variable as whole milliseconds.
func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return time.Duration(intVal) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
