// Package config loads server settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr     string `env:"PONG_ADDR" envDefault:":8042"`
	DBPath   string `env:"PONG_DB" envDefault:"transcendence.db"`
	WinScore int    `env:"PONG_WIN_SCORE" envDefault:"7"`
	LogLevel string `env:"PONG_LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
