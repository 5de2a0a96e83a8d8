package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Values come from the
// YAML file first, then DRYCKESLAGER_* environment variables override.
type Config struct {
	Port         int    `yaml:"port" envconfig:"PORT"`
	MetricsPort  int    `yaml:"metrics_port" envconfig:"METRICS_PORT"`
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`
	LogLevel     string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	AuthSecret   string `yaml:"auth_secret" envconfig:"AUTH_SECRET"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		Port:         8080,
		MetricsPort:  9090,
		DatabasePath: "data/dryckeslager.db",
		LogLevel:     "info",
	}
}

// Load reads the configuration file at path, if it exists, and applies
// environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("dryckeslager", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	return cfg, nil
}
