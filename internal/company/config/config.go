// Package config loads the service configuration: a YAML file, an optional
// .env file, and OLT_-prefixed environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. OLT_HTTP_PORT.
const EnvPrefix = "OLT"

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT" envconfig:"HTTP_PORT"`

	DBDriver   string `yaml:"DB_DRIVER" envconfig:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST" envconfig:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBUser     string `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`
	DBPath     string `yaml:"DB_PATH" envconfig:"DB_PATH"`
	// DBConnectTimeout bounds the retries while the company database comes up.
	DBConnectTimeout time.Duration `yaml:"DB_CONNECT_TIMEOUT" envconfig:"DB_CONNECT_TIMEOUT"`

	SettingsPath      string `yaml:"SETTINGS_PATH" envconfig:"SETTINGS_PATH"`
	SettingsNamespace string `yaml:"SETTINGS_NAMESPACE" envconfig:"SETTINGS_NAMESPACE"`
	BaseURLEnv        string `yaml:"BASE_URL_ENV" envconfig:"BASE_URL_ENV"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC" envconfig:"TOPIC"`
	JWTSecret    string   `yaml:"JWT_SECRET" envconfig:"JWT_SECRET"`
}

// Load reads the YAML file at path (a missing file is not an error), then
// applies .env and environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be provided")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GRPCPort == 0 {
		c.GRPCPort = 50051
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.DBPort == 0 {
		c.DBPort = 5432
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
	if c.DBConnectTimeout == 0 {
		c.DBConnectTimeout = 30 * time.Second
	}
	if c.SettingsPath == "" {
		c.SettingsPath = "olt-settings.db"
	}
	if c.SettingsNamespace == "" {
		c.SettingsNamespace = "olt-settings"
	}
	if c.BaseURLEnv == "" {
		c.BaseURLEnv = "APP_URL"
	}
	if c.Topic == "" {
		c.Topic = "olt.settings"
	}
}
