package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creasty/defaults"
)

// isolate points secrets and the config file at empty locations.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("FEBOS_SECRETS_PATH", filepath.Join(t.TempDir(), "missing"))
	t.Setenv("FEBOS_CONFIG_FILE", "")
}

func TestLoadConfig_EnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("FEBOS_USERNAME", "test@example.com")
	t.Setenv("FEBOS_PASSWORD", "testpass123")
	t.Setenv("FEBOS_ADDR", ":9999")
	t.Setenv("FEBOS_LOG_LEVEL", "debug")
	t.Setenv("FEBOS_LOG_FORMAT", "json")
	t.Setenv("FEBOS_POLL_INTERVAL", "30")
	t.Setenv("FEBOS_MQTT_ENABLED", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Username != "test@example.com" {
		t.Errorf("Username = %v, want test@example.com", cfg.Username)
	}
	if cfg.Password != "testpass123" {
		t.Errorf("Password = %v, want testpass123", cfg.Password)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %v, want :9999", cfg.ListenAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %v, want json", cfg.LogFormat)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.MQTT.ClientID != "febos_exporter_test_example_com" {
		t.Errorf("MQTT.ClientID = %v, want febos_exporter_test_example_com", cfg.MQTT.ClientID)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ListenAddr != ":9809" {
		t.Errorf("ListenAddr = %v, want :9809", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %v, want text", cfg.LogFormat)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Errorf("RequestTimeout = %v, want 2m", cfg.RequestTimeout)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("PollInterval = %v, want 60s", cfg.PollInterval)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.BaseURL != "https://febos.emmeti.com" {
		t.Errorf("BaseURL = %v", cfg.BaseURL)
	}
	if cfg.MQTT.Enabled || cfg.MQTT.DiscoveryPrefix != "homeassistant" || cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.InfluxDB.Enabled || cfg.InfluxDB.BatchSize != 100 {
		t.Errorf("InfluxDB = %+v", cfg.InfluxDB)
	}
}

func TestLoadConfig_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "febos.yaml")
	data := `
username: file@example.com
password: filepass
poll_interval: 2m
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic_prefix: home/febos
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FEBOS_CONFIG_FILE", path)
	t.Setenv("FEBOS_MQTT_BROKER", "tcp://override:1883")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Username != "file@example.com" || cfg.Password != "filepass" {
		t.Errorf("credentials = %q / %q", cfg.Username, cfg.Password)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Errorf("PollInterval = %v, want 2m", cfg.PollInterval)
	}
	if cfg.MQTT.TopicPrefix != "home/febos" || cfg.MQTT.DiscoveryPrefix != "homeassistant" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.MQTT.Broker != "tcp://override:1883" {
		t.Errorf("Broker = %v, env should override file", cfg.MQTT.Broker)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	isolate(t)
	t.Setenv("FEBOS_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}

func TestLoadConfig_Secrets(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "username"), []byte("secret-user\n"), 0o600)
	os.WriteFile(filepath.Join(dir, "password"), []byte(" secret-pass "), 0o600)
	t.Setenv("FEBOS_SECRETS_PATH", dir)
	t.Setenv("FEBOS_USERNAME", "env-user")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Username != "secret-user" || cfg.Password != "secret-pass" {
		t.Errorf("credentials = %q / %q, want secrets to win", cfg.Username, cfg.Password)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{Username: "user@example.com", Password: "password"}
	if err := defaults.Set(cfg); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing username", func(c *Config) { c.Username = "" }, true},
		{"missing password", func(c *Config) { c.Password = "" }, true},
		{"short timeout", func(c *Config) { c.RequestTimeout = 5 * time.Second }, true},
		{"short poll interval", func(c *Config) { c.PollInterval = time.Second }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, true},
		{"mqtt without broker", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker = "" }, true},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"influxdb without bucket", func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
