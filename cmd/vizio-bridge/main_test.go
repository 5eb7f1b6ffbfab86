package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("VIZIO_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidDatabasePath verifies run fails when the database cannot
// be opened.
func TestRun_InvalidDatabasePath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
bridge:
  id: test-bridge

database:
  path: /nonexistent/dir/bridge.db
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: test-client

influxdb:
  enabled: false

logging:
  level: error
  format: text
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("VIZIO_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when the database cannot be opened")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("VIZIO_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("VIZIO_CONFIG", "/etc/vizio/config.yaml")
	if got := getConfigPath(); got != "/etc/vizio/config.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}
