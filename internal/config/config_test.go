package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  path: "/tmp/test-jiten.db"
  max_conns: 4
  busy_timeout: "2s"

import:
  concurrency: 2
  max_bound_params: 100
  event_buffer: 8

events:
  subscriber_buffer: 32

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "/tmp/test-jiten.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Database.MaxConns != 4 {
		t.Errorf("Database.MaxConns = %d, want 4", cfg.Database.MaxConns)
	}
	if cfg.Database.BusyTimeout != 2*time.Second {
		t.Errorf("Database.BusyTimeout = %v, want 2s", cfg.Database.BusyTimeout)
	}
	if cfg.Import.Concurrency != 2 {
		t.Errorf("Import.Concurrency = %d, want 2", cfg.Import.Concurrency)
	}
	if cfg.Import.MaxBoundParams != 100 {
		t.Errorf("Import.MaxBoundParams = %d, want 100", cfg.Import.MaxBoundParams)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	// Point CONFIG_PATH at nothing so Load falls back to ENV + defaults.
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "./jiten.db" {
		t.Errorf("Database.Path default = %q", cfg.Database.Path)
	}
	if cfg.Import.Concurrency != 4 {
		t.Errorf("Import.Concurrency default = %d, want 4", cfg.Import.Concurrency)
	}
	if cfg.Import.MaxBoundParams != 999 {
		t.Errorf("Import.MaxBoundParams default = %d, want 999", cfg.Import.MaxBoundParams)
	}
	if cfg.Events.SubscriberBuffer != 64 {
		t.Errorf("Events.SubscriberBuffer default = %d, want 64", cfg.Events.SubscriberBuffer)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("IMPORT_CONCURRENCY", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Import.Concurrency != 7 {
		t.Errorf("Import.Concurrency = %d, want env override 7", cfg.Import.Concurrency)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Database: DatabaseConfig{Path: "./x.db", MaxConns: 1},
			Import:   ImportConfig{Concurrency: 1, MaxBoundParams: 999, EventBuffer: 1},
			Events:   EventsConfig{SubscriberBuffer: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }},
		{"zero concurrency", func(c *Config) { c.Import.Concurrency = 0 }},
		{"tiny bind budget", func(c *Config) { c.Import.MaxBoundParams = 4 }},
		{"zero event buffer", func(c *Config) { c.Import.EventBuffer = 0 }},
		{"zero subscriber buffer", func(c *Config) { c.Events.SubscriberBuffer = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
