// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Addr     string `env:"TILLBOOK_ADDR" envDefault:":8080"`
	DBPath   string `env:"TILLBOOK_DB_PATH" envDefault:"./data/tillbook.db"`
	Timezone string `env:"TILLBOOK_TIMEZONE" envDefault:"Local"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// EnvFileVar names an optional dotenv file loaded before parsing.
const EnvFileVar = "TILLBOOK_ENV_FILE"

// Load reads the optional env file and parses the environment into a Config.
// Variables already set in the process environment win over the file.
func Load() (Config, error) {
	if path := os.Getenv(EnvFileVar); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv parses environment variables into the target struct.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Location resolves Timezone, the zone business dates are computed in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TILLBOOK_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
