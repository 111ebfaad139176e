// Package config handles configuration loading from a YAML file, environment variables and Kubernetes secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the febos exporter.
type Config struct {
	// Authentication credentials
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Febos webapp
	BaseURL    string        `yaml:"base_url" default:"https://febos.emmeti.com" validate:"required,url"`
	SessionTTL time.Duration `yaml:"session_ttl" default:"30m"`

	// Server configuration
	ListenAddr     string        `yaml:"listen_addr" default:":9809" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"2m"`
	PollInterval   time.Duration `yaml:"poll_interval" default:"60s"`

	// Logging configuration
	LogLevel  string `yaml:"log_level" default:"info" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" default:"text" validate:"omitempty,oneof=text json"`

	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// MQTTConfig configures Home Assistant discovery over MQTT.
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Broker          string `yaml:"broker" default:"tcp://localhost:1883"`
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DiscoveryPrefix string `yaml:"discovery_prefix" default:"homeassistant"`
	TopicPrefix     string `yaml:"topic_prefix" default:"febos"`
	QoS             int    `yaml:"qos" default:"1" validate:"min=0,max=2"`
}

// InfluxDBConfig configures the time series sink.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url" default:"http://localhost:8086"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket" default:"febos"`
	BatchSize     int    `yaml:"batch_size" default:"100" validate:"min=0"`
	FlushInterval int    `yaml:"flush_interval" default:"10" validate:"min=0"` // seconds
}

// LoadConfig loads configuration. Defaults are applied first, then the YAML
// file named by FEBOS_CONFIG_FILE, then Kubernetes secrets for the
// credentials, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path := os.Getenv("FEBOS_CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Try to load from Kubernetes secrets first
	username, password, err := tryLoadFromSecrets()
	if err == nil && username != "" && password != "" {
		cfg.Username = username
		cfg.Password = password
	} else {
		// Fallback to environment variables
		setString(&cfg.Username, "FEBOS_USERNAME")
		setString(&cfg.Password, "FEBOS_PASSWORD")
	}

	applyEnvOverrides(cfg)

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = defaultClientID(cfg.Username)
	}

	return cfg, nil
}

// defaultClientID derives a stable MQTT client id from the account, so two
// exporters for different accounts can share a broker.
func defaultClientID(username string) string {
	var b strings.Builder
	b.WriteString("febos_exporter")
	if username != "" {
		b.WriteByte('_')
	}
	for _, r := range strings.ToLower(username) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides overrides file and default values from FEBOS_* variables.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.ListenAddr, "FEBOS_ADDR")
	setString(&cfg.BaseURL, "FEBOS_BASE_URL")
	setString(&cfg.LogLevel, "FEBOS_LOG_LEVEL")
	setString(&cfg.LogFormat, "FEBOS_LOG_FORMAT")
	setSeconds(&cfg.RequestTimeout, "FEBOS_REQUEST_TIMEOUT")
	setSeconds(&cfg.PollInterval, "FEBOS_POLL_INTERVAL")
	setSeconds(&cfg.SessionTTL, "FEBOS_SESSION_TTL")

	setBool(&cfg.MQTT.Enabled, "FEBOS_MQTT_ENABLED")
	setString(&cfg.MQTT.Broker, "FEBOS_MQTT_BROKER")
	setString(&cfg.MQTT.Username, "FEBOS_MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "FEBOS_MQTT_PASSWORD")

	setBool(&cfg.InfluxDB.Enabled, "FEBOS_INFLUXDB_ENABLED")
	setString(&cfg.InfluxDB.URL, "FEBOS_INFLUXDB_URL")
	setString(&cfg.InfluxDB.Token, "FEBOS_INFLUXDB_TOKEN")
	setString(&cfg.InfluxDB.Org, "FEBOS_INFLUXDB_ORG")
	setString(&cfg.InfluxDB.Bucket, "FEBOS_INFLUXDB_BUCKET")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			*dst = time.Duration(seconds) * time.Second
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("username is required (set FEBOS_USERNAME or mount K8s secret)")
	}
	if c.Password == "" {
		return errors.New("password is required (set FEBOS_PASSWORD or mount K8s secret)")
	}
	if c.RequestTimeout < 10*time.Second {
		return errors.New("request timeout must be at least 10 seconds")
	}
	if c.PollInterval < 10*time.Second {
		return errors.New("poll interval must be at least 10 seconds")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt broker is required when mqtt is enabled")
	}
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		return errors.New("influxdb url and bucket are required when influxdb is enabled")
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid value for %s", verrs[0].Namespace())
		}
		return err
	}
	return nil
}
