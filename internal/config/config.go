package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultLogLevel        = "INFO"
	defaultMaterializeCron = "5 0 * * *"
	defaultHorizonDays     = 7
)

// Config is the process configuration. Values come from the environment
// (optionally seeded by a .env file); a YAML file named by DAYLINE_CONFIG
// fills in whatever the environment leaves unset.
type Config struct {
	DatabaseURI string `yaml:"database_uri"`
	LogLevel    string `yaml:"log_level"`

	// MaterializeCron is a standard 5-field cron expression for the
	// background materialization sweep.
	MaterializeCron string `yaml:"materialize_cron"`

	// HorizonDays is how many days, today included, each sweep fills.
	HorizonDays int `yaml:"materialize_horizon_days"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{}
	if path := os.Getenv("DAYLINE_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	overrideString(&cfg.DatabaseURI, "DATABASE_URI")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.MaterializeCron, "MATERIALIZE_CRON")
	if v := os.Getenv("MATERIALIZE_HORIZON_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MATERIALIZE_HORIZON_DAYS %q: %w", v, err)
		}
		cfg.HorizonDays = n
	}

	cfg.normalize()
	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return errors.New("DATABASE_URI is required")
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("materialize horizon must be at least 1 day, got %d", c.HorizonDays)
	}
	return nil
}

func (c *Config) normalize() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaterializeCron == "" {
		c.MaterializeCron = defaultMaterializeCron
	}
	if c.HorizonDays == 0 {
		c.HorizonDays = defaultHorizonDays
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
