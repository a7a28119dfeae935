package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestConfig writes a config file to a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTestConfig(t, `
database:
  path: "/tmp/test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Session.TTLHours != 720 {
		t.Errorf("Session.TTLHours = %d, want 720", cfg.Session.TTLHours)
	}
	if cfg.Session.CookieName != "iskidms_session" {
		t.Errorf("Session.CookieName = %q, want iskidms_session", cfg.Session.CookieName)
	}
	if cfg.Session.SweepIntervalMinutes != 60 {
		t.Errorf("Session.SweepIntervalMinutes = %d, want 60", cfg.Session.SweepIntervalMinutes)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
api:
  port: 9090
database:
  path: "/tmp/custom.db"
session:
  ttl_hours: 24
  cookie_secure: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Database.Path = %q, want /tmp/custom.db", cfg.Database.Path)
	}
	if cfg.Session.TTLHours != 24 {
		t.Errorf("Session.TTLHours = %d, want 24", cfg.Session.TTLHours)
	}
	if !cfg.Session.CookieSecure {
		t.Error("Session.CookieSecure should be true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTestConfig(t, `
api:
  port: 9090
database:
  path: "/tmp/file.db"
`)

	t.Setenv("ISKIDMS_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("ISKIDMS_API_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q, want /tmp/env.db", cfg.Database.Path)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port = %d, want 7070", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"bad port", func(c *Config) { c.API.Port = 0 }},
		{"zero session ttl", func(c *Config) { c.Session.TTLHours = 0 }},
		{"zero sweep interval", func(c *Config) { c.Session.SweepIntervalMinutes = 0 }},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = "" }},
		{"tls without certs", func(c *Config) { c.API.TLS.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.SessionTTL(); got != 720*time.Hour {
		t.Errorf("SessionTTL() = %v, want 720h", got)
	}
	if got := cfg.SweepInterval(); got != time.Hour {
		t.Errorf("SweepInterval() = %v, want 1h", got)
	}
	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
}
