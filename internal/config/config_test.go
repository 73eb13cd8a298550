package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTempConfig creates a configuration file and points
// DASHBOARD_CONFIG at it.
func writeTempConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dashboard.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("DASHBOARD_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("unexpected server url: %s", cfg.ServerURL)
	}
	if cfg.StatusPollInterval != 30*time.Second {
		t.Errorf("unexpected status poll interval: %v", cfg.StatusPollInterval)
	}
	if cfg.BalancePollInterval != 60*time.Second {
		t.Errorf("unexpected balance poll interval: %v", cfg.BalancePollInterval)
	}
	if cfg.ReconnectBase != time.Second || cfg.ReconnectCap != 30*time.Second {
		t.Errorf("unexpected backoff bounds: %v / %v", cfg.ReconnectBase, cfg.ReconnectCap)
	}
	if cfg.Category != "all" {
		t.Errorf("unexpected category: %s", cfg.Category)
	}
}

func TestLoadFromFile(t *testing.T) {
	writeTempConfig(t, `
server_url: "https://dash.example.com"
status_poll_seconds: 10
reconnect_cap_ms: 5000
category: crypto
log_level: DEBUG
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "https://dash.example.com" {
		t.Errorf("unexpected server url: %s", cfg.ServerURL)
	}
	if cfg.StatusPollInterval != 10*time.Second {
		t.Errorf("unexpected status poll interval: %v", cfg.StatusPollInterval)
	}
	if cfg.ReconnectCap != 5*time.Second {
		t.Errorf("unexpected reconnect cap: %v", cfg.ReconnectCap)
	}
	if cfg.Category != "crypto" {
		t.Errorf("unexpected category: %s", cfg.Category)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	writeTempConfig(t, `server_url: "http://from-file:8000"`)
	t.Setenv("DASHBOARD_SERVER_URL", "http://from-env:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://from-env:9000" {
		t.Errorf("env must win over file, got %s", cfg.ServerURL)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	writeTempConfig(t, `server_url: "ftp://nope"`)

	if _, err := Load(); err == nil {
		t.Error("expected validation error for non-http scheme")
	}
}

func TestValidateRejectsInvertedBackoff(t *testing.T) {
	writeTempConfig(t, "reconnect_base_ms: 5000\nreconnect_cap_ms: 1000\n")

	if _, err := Load(); err == nil {
		t.Error("expected validation error when cap < base")
	}
}

func TestSocketURLDerivation(t *testing.T) {
	cases := []struct {
		server string
		want   string
	}{
		{"http://localhost:8000", "ws://localhost:8000/ws"},
		{"https://dash.example.com", "wss://dash.example.com/ws"},
	}

	for _, c := range cases {
		cfg := &Config{ServerURL: c.server}
		if got := cfg.SocketURL(); got != c.want {
			t.Errorf("SocketURL(%s) = %q, want %q", c.server, got, c.want)
		}
	}
}
