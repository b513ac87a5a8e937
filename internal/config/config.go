// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds server settings. Game rules live in the catalog.
type Config struct {
	Port       int    `env:"WB_PORT" envDefault:"8080"`
	DBPath     string `env:"WB_DB_PATH" envDefault:"waterbarons.db"`
	Catalog    string `env:"WB_CATALOG"`
	LogLevel   string `env:"WB_LOG_LEVEL" envDefault:"info"`
	Seed       uint64 `env:"WB_SEED"`
	MaxRounds  int    `env:"WB_MAX_ROUNDS" envDefault:"12"`
	MaxPlayers int    `env:"WB_MAX_PLAYERS" envDefault:"5"`
}

// ParseEnv parses environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the config from the environment.
func Load() (Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2, got %d", c.MaxPlayers)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max rounds must not be negative, got %d", c.MaxRounds)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level, falling back to info.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
