package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the optional YAML file read by Load.
const DefaultConfigFile = "bracket-engine.yaml"

type Config struct {
	DatabasePath      string   `yaml:"database_path" validate:"required"`
	HTTPAddr          string   `yaml:"http_addr" validate:"required"`
	LogLevel          string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	MigrateOnStart    bool     `yaml:"migrate_on_start"`
	ConfirmedStatuses []string `yaml:"confirmed_statuses" validate:"min=1,dive,required"`
}

func Defaults() Config {
	return Config{
		DatabasePath:      "bracket_engine.db",
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		MigrateOnStart:    true,
		ConfirmedStatuses: []string{"CONFIRMED_BOTH_PAID", "CONFIRMED_CAPTAIN_FULL"},
	}
}

// Load reads an optional .env file, then builds the config with the
// hierarchy defaults < YAML < environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()
	return LoadFrom(DefaultConfigFile)
}

func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML unmarshals the file over cfg. A missing file is not an error.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays non-empty environment variables onto cfg.
func loadEnv(cfg *Config) error {
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MIGRATE_ON_START: %w", err)
		}
		cfg.MigrateOnStart = b
	}

	if v := os.Getenv("CONFIRMED_STATUSES"); v != "" {
		var statuses []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
		cfg.ConfirmedStatuses = statuses
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
