package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTempConfig writes YAML content to a temp file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeTempConfig(t, "bridge:\n  id: vizio\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default MQTT port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8092 {
		t.Errorf("default API port = %d, want 8092", cfg.API.Port)
	}
	if cfg.Bridge.HealthInterval != 30 {
		t.Errorf("default health interval = %d, want 30", cfg.Bridge.HealthInterval)
	}
	if !cfg.Bridge.ConnectOnStart {
		t.Error("default connect_on_start should be true")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
bridge:
  id: vizio-lab
mqtt:
  broker:
    host: broker.local
    port: 8883
    tls: true
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bridge.ID != "vizio-lab" {
		t.Errorf("bridge.id = %q, want vizio-lab", cfg.Bridge.ID)
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("broker = %s:%d, want broker.local:8883", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("mqtt.broker.tls should be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VIZIO_MQTT_PASSWORD", "secret-from-env")
	t.Setenv("VIZIO_API_TOKEN", "token-from-env")

	path := writeTempConfig(t, "bridge:\n  id: vizio\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Auth.Password != "secret-from-env" {
		t.Errorf("mqtt password = %q, want env override", cfg.MQTT.Auth.Password)
	}
	if cfg.API.Token != "token-from-env" {
		t.Errorf("api token = %q, want env override", cfg.API.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing bridge id",
			mutate:  func(c *Config) { c.Bridge.ID = "" },
			wantErr: "bridge.id",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid mqtt port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name: "influx enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = "tv"
			},
			wantErr: "influxdb.url",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
